package broadcast

import (
	"context"
	"sync"
)

// chanQueue exposes a plain Go channel to the consumer. A pump goroutine
// moves values from the unbuffered input into an overflow slice and feeds
// the output channel, so producers never wait on the consumer.
type chanQueue[T any] struct {
	in   chan T
	out  chan T
	stop chan struct{}

	mu         sync.RWMutex
	sendClosed bool
	stopOnce   sync.Once

	pumpDone chan struct{}
	left     []T // written by the pump before pumpDone closes
}

func newChanQueue[T any]() *chanQueue[T] {
	q := &chanQueue[T]{
		in:       make(chan T),
		out:      make(chan T),
		stop:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *chanQueue[T]) pump() {
	defer close(q.pumpDone)
	defer close(q.out)

	var (
		zero T
		buf  []T
		in   = q.in
	)

	for {
		if len(buf) == 0 {
			if in == nil {
				return
			}
			select {
			case v, ok := <-in:
				if !ok {
					in = nil
					continue
				}
				buf = append(buf, v)
			case <-q.stop:
				return
			}
			continue
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf = append(buf, v)
		case q.out <- buf[0]:
			buf[0] = zero
			buf = buf[1:]
		case <-q.stop:
			q.left = buf
			return
		}
	}
}

func (q *chanQueue[T]) Push(v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.sendClosed {
		return ErrClosed
	}

	select {
	case <-q.stop:
		return ErrClosed
	default:
	}

	select {
	case q.in <- v:
		return nil
	case <-q.stop:
		return ErrClosed
	}
}

func (q *chanQueue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-q.out:
		if !ok {
			return zero, ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (q *chanQueue[T]) CloseSend() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sendClosed {
		q.sendClosed = true
		close(q.in)
	}
}

func (q *chanQueue[T]) CloseRecv() []T {
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	<-q.pumpDone
	return q.left
}
