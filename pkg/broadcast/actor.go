package broadcast

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/subject/core/logger"
)

// actor owns the subscriber registry. Only run touches sinks; everything
// else talks to it through the commands queue.
type actor[V any] struct {
	commands Queue[command]
	backend  Backend
	logger   *slog.Logger
	observer Observer

	senders atomic.Int64
	done    chan struct{}

	// Published by the loop for Stats.
	running     atomic.Bool
	subscribers atomic.Int64
	broadcasts  atomic.Uint64
	deliveries  atomic.Uint64
	pruned      atomic.Uint64
}

func newActor[V any](o *options) *actor[V] {
	a := &actor[V]{
		commands: NewQueue[command](o.backend),
		backend:  o.backend,
		logger: o.logger.With(
			logger.Component("broadcast"),
			slog.String("subject", o.name),
			slog.String("backend", o.backend.String()),
		),
		observer: o.observer,
		done:     make(chan struct{}),
	}
	a.senders.Store(1)
	a.running.Store(true)
	return a
}

func (a *actor[V]) run() {
	var sinks []Queue[V]
	reason := StopDisconnect

	defer func() {
		a.stop(sinks, reason)
	}()

	for {
		cmd, err := a.commands.Pop(context.Background())
		if err != nil {
			reason = StopReleased
			return
		}

		switch c := cmd.(type) {
		case sendCmd[V]:
			sinks = a.broadcast(sinks, c.value)
		case subscribeCmd[V]:
			sinks = append(sinks, c.sink)
			a.subscribers.Store(int64(len(sinks)))
			a.observer.Subscribed(len(sinks))
			a.logger.Debug("subscriber registered", logger.Count("subscribers", len(sinks)))
		case disconnectCmd:
			return
		}
	}
}

// broadcast pushes v into every sink and keeps only the ones that accepted it.
func (a *actor[V]) broadcast(sinks []Queue[V], v V) []Queue[V] {
	kept := sinks[:0]
	for _, sink := range sinks {
		if err := sink.Push(v); err != nil {
			continue
		}
		kept = append(kept, sink)
	}

	dropped := len(sinks) - len(kept)
	clear(sinks[len(kept):])

	a.broadcasts.Add(1)
	a.deliveries.Add(uint64(len(kept)))
	if dropped > 0 {
		a.pruned.Add(uint64(dropped))
		a.subscribers.Store(int64(len(kept)))
		a.logger.Debug("pruned abandoned subscribers",
			logger.Count("pruned", dropped),
			logger.Count("subscribers", len(kept)))
	}
	a.observer.Broadcast(len(kept), dropped)

	return kept
}

func (a *actor[V]) stop(sinks []Queue[V], reason StopReason) {
	// Commands still queued are never processed, but sinks they carry must
	// be closed so their receivers see end-of-stream.
	for _, cmd := range a.commands.CloseRecv() {
		if c, ok := cmd.(subscribeCmd[V]); ok {
			c.sink.CloseSend()
		}
	}
	for _, sink := range sinks {
		sink.CloseSend()
	}

	a.subscribers.Store(0)
	a.running.Store(false)
	a.observer.Stopped(reason)
	a.logger.Debug("actor stopped",
		slog.String("reason", reason.String()),
		logger.Count("subscribers", len(sinks)))

	close(a.done)
}

// release drops one sender reference. The last one closes the command queue,
// which ends the loop once it has drained.
func (a *actor[V]) release() {
	if a.senders.Add(-1) == 0 {
		a.commands.CloseSend()
	}
}
