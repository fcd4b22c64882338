package dhash

type slotState uint8

const (
	slotEmpty slotState = iota // never occupied since the last rebuild
	slotTombstone
	slotOccupied
)

// Slot is one bucket of the backing array. The zero value is an empty slot,
// so a freshly allocated array needs no initialisation.
type Slot struct {
	state slotState
	key   string
	value string
}

// IsEmpty reports whether the slot has not been used since the last rebuild.
func (s Slot) IsEmpty() bool { return s.state == slotEmpty }

// IsTombstone reports whether the slot held an entry that was deleted.
func (s Slot) IsTombstone() bool { return s.state == slotTombstone }

// IsOccupied reports whether the slot holds a live entry.
func (s Slot) IsOccupied() bool { return s.state == slotOccupied }

// Key returns the slot's key, or "" unless the slot is occupied.
func (s Slot) Key() string { return s.key }

// Value returns the slot's value, or "" unless the slot is occupied.
func (s Slot) Value() string { return s.value }

// slotStore owns the backing array and every key and value stored in it.
// Indexes always come from a probe and are in range.
type slotStore struct {
	slots []Slot
	alloc Allocator
}

func newSlotStore(capacity int, alloc Allocator) *slotStore {
	return &slotStore{
		slots: alloc.Slots(capacity),
		alloc: alloc,
	}
}

func (s *slotStore) len() int { return len(s.slots) }

func (s *slotStore) get(i int) Slot { return s.slots[i] }

func (s *slotStore) set(i int, sl Slot) { s.slots[i] = sl }

// occupy stores owned copies of key and value at i, releasing whatever the
// slot held before.
func (s *slotStore) occupy(i int, key, value string) {
	s.free(i)
	s.set(i, Slot{
		state: slotOccupied,
		key:   s.alloc.String(key),
		value: s.alloc.String(value),
	})
}

// replace swaps the value of the occupied slot at i.
func (s *slotStore) replace(i int, value string) {
	sl := s.slots[i]
	s.alloc.FreeString(sl.value)
	sl.value = s.alloc.String(value)
	s.slots[i] = sl
}

// bury turns the occupied slot at i into a tombstone.
func (s *slotStore) bury(i int) {
	s.free(i)
	s.set(i, Slot{state: slotTombstone})
}

func (s *slotStore) free(i int) {
	if sl := s.slots[i]; sl.state == slotOccupied {
		s.alloc.FreeString(sl.key)
		s.alloc.FreeString(sl.value)
	}
}

// live calls fn for every occupied slot in index order until fn returns false.
func (s *slotStore) live(fn func(i int, sl Slot) bool) {
	for i, sl := range s.slots {
		if sl.state != slotOccupied {
			continue
		}
		if !fn(i, sl) {
			return
		}
	}
}

// release hands the array and, when owned, every stored string back to the
// allocator. The store must not be used afterwards.
func (s *slotStore) release(ownsStrings bool) {
	if ownsStrings {
		for i := range s.slots {
			s.free(i)
		}
	}
	s.alloc.FreeSlots(s.slots)
	s.slots = nil
}
