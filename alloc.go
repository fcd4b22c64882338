package dhash

import (
	"log/slog"
	"os"
	"strings"
	"unsafe"
)

// Allocator supplies the memory a table stores its slots and strings in.
//
// Implementations never report failure. When memory cannot be provided they
// terminate the process, so the table has no allocation error paths.
type Allocator interface {
	// Slots returns a zeroed array of n empty slots.
	Slots(n int) []Slot
	// String returns a copy of s that shares no memory with it.
	String(s string) string
	// FreeSlots and FreeString return memory obtained from this allocator.
	FreeSlots(slots []Slot)
	FreeString(s string)
}

// FatalFunc is called when an allocator cannot satisfy a request.
// It is expected not to return.
type FatalFunc func(msg string, args ...any)

// ExitOnOOM logs the failed request and exits the process with status 1.
func ExitOnOOM(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

var slotBytes = int64(unsafe.Sizeof(Slot{}))

type runtimeAllocator struct{}

// DefaultAllocator allocates from the Go heap. The runtime already aborts
// the process when the heap is exhausted.
func DefaultAllocator() Allocator { return runtimeAllocator{} }

func (runtimeAllocator) Slots(n int) []Slot { return make([]Slot, n) }
func (runtimeAllocator) String(s string) string { return strings.Clone(s) }
func (runtimeAllocator) FreeSlots([]Slot) {}
func (runtimeAllocator) FreeString(string) {}

// BudgetAllocator is a fail-fast allocator that accounts every slot array and
// string it hands out against a fixed byte budget. Exceeding the budget calls
// its FatalFunc, which defaults to ExitOnOOM.
type BudgetAllocator struct {
	limit int64
	used  int64
	peak  int64
	fatal FatalFunc
}

// NewBudgetAllocator returns an allocator limited to maxBytes. A nil fatal
// uses ExitOnOOM.
func NewBudgetAllocator(maxBytes int64, fatal FatalFunc) *BudgetAllocator {
	if fatal == nil {
		fatal = ExitOnOOM
	}
	return &BudgetAllocator{limit: maxBytes, fatal: fatal}
}

func (b *BudgetAllocator) reserve(n int64) {
	if b.used+n > b.limit {
		b.fatal("out of memory, exiting",
			"requested", n,
			"used", b.used,
			"limit", b.limit,
		)
	}
	b.used += n
	if b.used > b.peak {
		b.peak = b.used
	}
}

func (b *BudgetAllocator) credit(n int64) {
	b.used -= n
	if b.used < 0 {
		b.used = 0
	}
}

// Slots implements Allocator.
func (b *BudgetAllocator) Slots(n int) []Slot {
	b.reserve(int64(n) * slotBytes)
	return make([]Slot, n)
}

// String implements Allocator.
func (b *BudgetAllocator) String(s string) string {
	b.reserve(int64(len(s)))
	return strings.Clone(s)
}

// FreeSlots implements Allocator.
func (b *BudgetAllocator) FreeSlots(slots []Slot) { b.credit(int64(len(slots)) * slotBytes) }

// FreeString implements Allocator.
func (b *BudgetAllocator) FreeString(s string) { b.credit(int64(len(s))) }

// Used returns the bytes currently accounted to live allocations.
func (b *BudgetAllocator) Used() int64 { return b.used }

// Peak returns the highest value Used has reached.
func (b *BudgetAllocator) Peak() int64 { return b.peak }

// Limit returns the budget.
func (b *BudgetAllocator) Limit() int64 { return b.limit }
