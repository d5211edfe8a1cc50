package broadcast

// StopReason tells why an actor loop exited.
type StopReason int

const (
	// StopDisconnect means a handle called Close.
	StopDisconnect StopReason = iota
	// StopReleased means every handle was released without calling Close.
	StopReleased
)

func (r StopReason) String() string {
	switch r {
	case StopDisconnect:
		return "disconnect"
	case StopReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Observer receives callbacks from the actor goroutine.
// Callbacks run inside the actor loop and must return quickly.
type Observer interface {
	// Subscribed is called after a sink was registered.
	Subscribed(subscribers int)
	// Broadcast is called after one Send was fanned out.
	Broadcast(delivered, pruned int)
	// Stopped is called once, when the loop exits.
	Stopped(reason StopReason)
}

type nopObserver struct{}

func (nopObserver) Subscribed(int)     {}
func (nopObserver) Broadcast(int, int) {}
func (nopObserver) Stopped(StopReason) {}
