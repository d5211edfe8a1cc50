package broadcast

import (
	"context"
	"iter"
	"runtime"
)

// Receiver is the consuming end of one subscription.
// It must be used by a single goroutine.
type Receiver[V any] struct {
	queue Queue[V]
}

func newReceiver[V any](q Queue[V]) *Receiver[V] {
	r := &Receiver[V]{queue: q}
	// An unreachable receiver counts as abandoned; the actor prunes it on the next send.
	runtime.AddCleanup(r, func(q Queue[V]) { q.CloseRecv() }, q)
	return r
}

// Recv waits for the next value. It returns ErrClosed once the subject has
// stopped and every buffered value was consumed, or ctx.Err() if ctx ends first.
func (r *Receiver[V]) Recv(ctx context.Context) (V, error) {
	defer runtime.KeepAlive(r)
	return r.queue.Pop(ctx)
}

// All iterates over received values until the stream ends or ctx is done.
func (r *Receiver[V]) All(ctx context.Context) iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, err := r.Recv(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Close abandons the subscription. Values already buffered are discarded.
func (r *Receiver[V]) Close() {
	r.queue.CloseRecv()
}
