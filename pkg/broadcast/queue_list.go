package broadcast

import (
	"context"
	"sync"
)

type listQueue[T any] struct {
	mu         sync.Mutex
	items      []T
	sendClosed bool
	recvClosed bool

	// Single consumer, so one pending token is enough to never miss a wakeup.
	notify chan struct{}
}

func newListQueue[T any]() *listQueue[T] {
	return &listQueue[T]{
		notify: make(chan struct{}, 1),
	}
}

func (q *listQueue[T]) Push(v T) error {
	q.mu.Lock()
	if q.sendClosed || q.recvClosed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.wake()
	return nil
}

func (q *listQueue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.sendClosed || q.recvClosed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (q *listQueue[T]) CloseSend() {
	q.mu.Lock()
	q.sendClosed = true
	q.mu.Unlock()
	q.wake()
}

func (q *listQueue[T]) CloseRecv() []T {
	q.mu.Lock()
	q.recvClosed = true
	rest := q.items
	q.items = nil
	q.mu.Unlock()
	q.wake()
	return rest
}

func (q *listQueue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
