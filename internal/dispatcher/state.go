package dispatcher

import "sync/atomic"

// State is the dispatcher's handshake state machine (spec.md §4.H):
// Uninitialized -> Initialized -> ShuttingDown.
type State int32

const (
	Uninitialized State = iota
	Initialized
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case ShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// stateBox is an atomic State holder.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) Load() State      { return State(b.v.Load()) }
func (b *stateBox) Store(s State)    { b.v.Store(int32(s)) }
func (b *stateBox) CompareAndSwap(old, new State) bool {
	return b.v.CompareAndSwap(int32(old), int32(new))
}

// exemptMethods may be called before initialize completes (spec.md §4.H /
// universal invariant 3).
var exemptMethods = map[string]bool{
	"initialize":               true,
	"ping":                     true,
	"notifications/initialized": true,
}
