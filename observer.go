package dhash

// Op identifies the table operation a probe walk was made for.
type Op uint8

const (
	OpInsert Op = iota
	OpSearch
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpSearch:
		return "search"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ResizeEvent describes one completed rebuild.
type ResizeEvent struct {
	Grow        bool
	OldBase     int
	NewBase     int
	OldCapacity int
	NewCapacity int
	// Live is the number of entries carried over, Dropped the number of
	// tombstones discarded.
	Live    int
	Dropped int
}

// Observer receives table events. Calls happen synchronously on the
// goroutine that owns the table.
type Observer interface {
	Resized(ev ResizeEvent)
	Probed(op Op, attempts int)
}

type noopObserver struct{}

func (noopObserver) Resized(ResizeEvent) {}
func (noopObserver) Probed(Op, int)      {}
