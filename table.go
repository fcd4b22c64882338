package dhash

import (
	"fmt"
	"iter"
	"log/slog"
)

// Table is an open-addressing string to string hash table. Collisions are
// resolved by double hashing over a prime number of buckets, deletes leave
// tombstones and the load factor drives growing and shrinking.
//
// A Table is not safe for concurrent use. It must have a single logical
// owner, or the caller must serialise every method call with its own lock.
type Table struct {
	store      *slotStore
	baseSize   int
	count      int
	tombstones int
	resizes    int

	policy Policy
	alloc  Allocator
	log    *slog.Logger
	obs    Observer
}

// Option configures a Table.
type Option func(t *Table)

// WithPolicy sets the resize policy. The default is DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(t *Table) {
		t.policy = p
	}
}

// WithAllocator sets the allocator backing slots and strings.
func WithAllocator(a Allocator) Option {
	return func(t *Table) {
		t.alloc = a
	}
}

// WithLogger sets the logger resize events are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		t.log = l
	}
}

// WithObserver registers an Observer for resize and probe events.
func WithObserver(o Observer) Option {
	return func(t *Table) {
		t.obs = o
	}
}

// New returns an empty table sized at the policy's minimum base size.
func New(opts ...Option) (*Table, error) {
	t := &Table{
		policy: DefaultPolicy(),
		alloc:  DefaultAllocator(),
		log:    slog.New(slog.DiscardHandler),
		obs:    noopObserver{},
	}
	for _, apply := range opts {
		apply(t)
	}

	if err := t.policy.Validate(); err != nil {
		return nil, err
	}

	t.baseSize = t.policy.MinBaseSize
	t.store = newSlotStore(NextPrime(t.baseSize), t.alloc)
	return t, nil
}

// MustNew is like New but panics on an invalid policy.
func MustNew(opts ...Option) *Table {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Insert stores value under key, replacing the value if key is already
// present. Key and value are copied.
func (t *Table) Insert(key, value string) {
	t.mustLive()

	if t.policy.shouldGrow(t.count, t.store.len()) {
		t.resize(t.policy.grownBase(t.baseSize), true)
	}

	idx, found, attempts := locate(t.store, key)
	t.obs.Probed(OpInsert, attempts)

	switch {
	case found:
		t.store.replace(idx, value)
	case idx < 0:
		panic(fmt.Errorf("%w: key %q, capacity %d, count %d", ErrProbeExhausted, key, t.store.len(), t.count))
	default:
		if t.store.get(idx).IsTombstone() {
			t.tombstones--
		}
		t.store.occupy(idx, key, value)
		t.count++
	}
}

// Search returns the value stored under key and whether it was found.
func (t *Table) Search(key string) (string, bool) {
	t.mustLive()

	idx, found, attempts := locate(t.store, key)
	t.obs.Probed(OpSearch, attempts)
	if !found {
		return "", false
	}
	return t.store.get(idx).Value(), true
}

// Contains reports whether key is present.
func (t *Table) Contains(key string) bool {
	_, ok := t.Search(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	t.mustLive()

	if t.policy.shouldShrink(t.count, t.store.len()) {
		if base, ok := t.policy.shrunkBase(t.baseSize, t.count); ok {
			t.resize(base, false)
		}
	}

	idx, found, attempts := locate(t.store, key)
	t.obs.Probed(OpDelete, attempts)
	if !found {
		return false
	}

	t.store.bury(idx)
	t.count--
	t.tombstones++
	return true
}

// Size returns the number of live entries.
func (t *Table) Size() int {
	t.mustLive()
	return t.count
}

// Capacity returns the number of buckets, always NextPrime(BaseSize()).
func (t *Table) Capacity() int {
	t.mustLive()
	return t.store.len()
}

// BaseSize returns the size target the capacity was rounded up from.
func (t *Table) BaseSize() int {
	t.mustLive()
	return t.baseSize
}

// LoadFactor returns the live entries as an integer percentage of capacity.
func (t *Table) LoadFactor() int {
	t.mustLive()
	return loadFactor(t.count, t.store.len())
}

// Stats is a snapshot of a table's bookkeeping.
type Stats struct {
	Capacity   int
	BaseSize   int
	Count      int
	Tombstones int
	LoadFactor int
	Resizes    int
}

func (t *Table) Stats() Stats {
	t.mustLive()
	return Stats{
		Capacity:   t.store.len(),
		BaseSize:   t.baseSize,
		Count:      t.count,
		Tombstones: t.tombstones,
		LoadFactor: loadFactor(t.count, t.store.len()),
		Resizes:    t.resizes,
	}
}

// All iterates over the live entries in bucket order. The table must not be
// modified during iteration.
func (t *Table) All() iter.Seq2[string, string] {
	t.mustLive()
	return func(yield func(string, string) bool) {
		t.store.live(func(_ int, sl Slot) bool {
			return yield(sl.key, sl.value)
		})
	}
}

// Keys returns the live keys in bucket order.
func (t *Table) Keys() []string {
	t.mustLive()
	keys := make([]string, 0, t.count)
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// Destroy releases the slot array and every stored string. Any later method
// call panics with ErrDestroyed.
func (t *Table) Destroy() {
	if t.store == nil {
		return
	}
	t.store.release(true)
	t.store = nil
	t.count = 0
	t.tombstones = 0
}

func (t *Table) mustLive() {
	if t.store == nil {
		panic(ErrDestroyed)
	}
}

// resize rebuilds the table at newBase. Live entries are re-inserted into a
// fresh store through the normal probe walk, so tombstones are dropped, and
// the new store replaces the old one in a single step.
func (t *Table) resize(newBase int, grow bool) {
	old := t.store
	next := newSlotStore(NextPrime(newBase), t.alloc)

	moved := 0
	old.live(func(_ int, sl Slot) bool {
		idx, _, _ := locate(next, sl.key)
		if idx < 0 {
			panic(fmt.Errorf("%w: rebuilding into capacity %d", ErrProbeExhausted, next.len()))
		}
		// strings are already owned; move them instead of copying
		next.set(idx, sl)
		moved++
		return true
	})

	ev := ResizeEvent{
		Grow:        grow,
		OldBase:     t.baseSize,
		NewBase:     newBase,
		OldCapacity: old.len(),
		NewCapacity: next.len(),
		Live:        moved,
		Dropped:     t.tombstones,
	}

	t.store, t.baseSize, t.count, t.tombstones = next, newBase, moved, 0
	t.resizes++
	old.release(false)

	t.log.Debug("resized table",
		"grow", ev.Grow,
		"base_size", ev.NewBase,
		"capacity", ev.NewCapacity,
		"old_capacity", ev.OldCapacity,
		"live", ev.Live,
		"tombstones_dropped", ev.Dropped,
	)
	t.obs.Resized(ev)
}

// locate walks key's probe sequence once, reading each bucket a single time.
// If key is present it returns its bucket and found. Otherwise it returns the
// bucket a new entry belongs in: the first tombstone passed, else the empty
// bucket that ended the walk, or -1 if the walk covered every bucket without
// finding either. attempts is the number of buckets examined.
func locate(s *slotStore, key string) (idx int, found bool, attempts int) {
	n := s.len()
	p := newProbe(key, n)
	free := -1

	for attempt := 0; attempt < n; attempt++ {
		i := p.at(attempt)
		sl := s.get(i)
		switch sl.state {
		case slotEmpty:
			if free < 0 {
				free = i
			}
			return free, false, attempt + 1
		case slotTombstone:
			if free < 0 {
				free = i
			}
		case slotOccupied:
			if sl.key == key {
				return i, true, attempt + 1
			}
		}
	}
	return free, false, n
}
