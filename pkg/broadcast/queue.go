package broadcast

import (
	"context"
	"fmt"
	"strings"
)

// Queue is an unbounded FIFO with any number of producers and a single consumer.
// The actor's command queue and every subscriber's value queue are Queues.
type Queue[T any] interface {
	// Push appends v without blocking on the consumer.
	// Returns ErrClosed once either side has been closed.
	Push(v T) error

	// Pop blocks until a value is available, the queue is closed and drained,
	// or ctx is done. Returns ErrClosed when no value can ever arrive.
	Pop(ctx context.Context) (T, error)

	// CloseSend marks the producer side finished. Buffered values remain
	// available to Pop. Safe to call more than once.
	CloseSend()

	// CloseRecv abandons the consumer side and returns the values that were
	// still buffered. Subsequent pushes fail. Safe to call more than once.
	CloseRecv() []T
}

// Backend selects the queue implementation that underlies a Subject.
type Backend int

const (
	// BackendList is a mutex-guarded slice with a one-slot wakeup channel.
	BackendList Backend = iota
	// BackendChannel is a Go channel fed by a pump goroutine with an overflow buffer.
	BackendChannel
)

func (b Backend) String() string {
	switch b {
	case BackendList:
		return "list"
	case BackendChannel:
		return "channel"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend converts a backend name ("list" or "channel") into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return BackendList, nil
	case "channel", "chan":
		return BackendChannel, nil
	default:
		return BackendList, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// UnmarshalText lets env and flag parsers fill a Backend from its name.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// NewQueue builds an empty queue using the given backend.
// Unknown backends fall back to BackendList.
func NewQueue[T any](b Backend) Queue[T] {
	switch b {
	case BackendChannel:
		return newChanQueue[T]()
	default:
		return newListQueue[T]()
	}
}
