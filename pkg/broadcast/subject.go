package broadcast

import (
	"runtime"
	"sync/atomic"
)

// Subject is a handle to a broadcast actor. Every value sent through any
// handle is delivered to every receiver subscribed before that send.
//
// Handles are safe for concurrent use. Clone yields another handle to the
// same actor; the actor keeps running until Close is called on any handle
// or until every handle has been released.
type Subject[V any] struct {
	ref *handleRef[V]
}

// handleRef is the per-handle state kept apart from Subject so a runtime
// cleanup can release it once the Subject itself is unreachable.
type handleRef[V any] struct {
	actor    *actor[V]
	released atomic.Bool
}

func (r *handleRef[V]) release() {
	if r.released.CompareAndSwap(false, true) {
		r.actor.release()
	}
}

// Stats is a point-in-time snapshot of an actor's state.
type Stats struct {
	Running     bool
	Subscribers int
	Broadcasts  uint64
	Deliveries  uint64
	Pruned      uint64
}

// New creates a Subject and starts its actor goroutine.
func New[V any](opts ...Option) *Subject[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	a := newActor[V](o)
	go a.run()

	return newHandle(a)
}

func newHandle[V any](a *actor[V]) *Subject[V] {
	s := &Subject[V]{ref: &handleRef[V]{actor: a}}
	runtime.AddCleanup(s, func(r *handleRef[V]) { r.release() }, s.ref)
	return s
}

// Send enqueues v for broadcast. It does not wait for delivery and reports
// success whether or not anyone is subscribed. When the actor is gone it
// returns a *SendError carrying v.
func (s *Subject[V]) Send(v V) error {
	if err := s.submit(sendCmd[V]{value: v}); err != nil {
		return &SendError[V]{Value: v}
	}
	return nil
}

// Subscribe registers a new receiver. The receiver is returned before the
// actor processes the registration; it gets every value sent after this call.
func (s *Subject[V]) Subscribe() (*Receiver[V], error) {
	sink := NewQueue[V](s.ref.actor.backend)
	if err := s.submit(subscribeCmd[V]{sink: sink}); err != nil {
		sink.CloseSend()
		sink.CloseRecv()
		return nil, err
	}
	return newReceiver(sink), nil
}

// Close asks the actor to stop. Commands submitted after Close returns fail
// with ErrClosed on every handle. Close does not wait for the actor to exit;
// use Done for that.
func (s *Subject[V]) Close() error {
	if err := s.submit(disconnectCmd{}); err != nil {
		return err
	}
	s.ref.actor.commands.CloseSend()
	return nil
}

// Clone returns another handle to the same actor.
// A clone of a released handle is released as well.
func (s *Subject[V]) Clone() *Subject[V] {
	a := s.ref.actor
	if s.ref.released.Load() {
		c := &Subject[V]{ref: &handleRef[V]{actor: a}}
		c.ref.released.Store(true)
		return c
	}

	a.senders.Add(1)
	return newHandle(a)
}

// Release gives up this handle without stopping the actor. Once every
// handle is released the actor exits after processing what is queued.
// Using a released handle returns ErrClosed.
func (s *Subject[V]) Release() {
	s.ref.release()
}

// Done is closed when the actor loop has exited.
func (s *Subject[V]) Done() <-chan struct{} {
	return s.ref.actor.done
}

// Stats returns counters published by the actor.
func (s *Subject[V]) Stats() Stats {
	a := s.ref.actor
	return Stats{
		Running:     a.running.Load(),
		Subscribers: int(a.subscribers.Load()),
		Broadcasts:  a.broadcasts.Load(),
		Deliveries:  a.deliveries.Load(),
		Pruned:      a.pruned.Load(),
	}
}

func (s *Subject[V]) submit(cmd command) error {
	defer runtime.KeepAlive(s)

	if s.ref.released.Load() {
		return ErrClosed
	}
	return s.ref.actor.commands.Push(cmd)
}
