package broadcast

import "errors"

var (
	// ErrClosed is returned when the subject's actor is no longer reachable,
	// and by a Receiver once its stream has ended.
	ErrClosed = errors.New("broadcast: subject closed")

	// ErrUnknownBackend is returned when parsing an unsupported backend name.
	ErrUnknownBackend = errors.New("broadcast: unknown queue backend")
)

// SendError is returned by Subject.Send when the actor is gone.
// It hands the rejected value back so it is not silently lost.
type SendError[V any] struct {
	Value V
}

func (e *SendError[V]) Error() string {
	return "broadcast: sending on a closed subject"
}

// Unwrap makes errors.Is(err, ErrClosed) report true.
func (e *SendError[V]) Unwrap() error {
	return ErrClosed
}
