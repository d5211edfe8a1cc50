// Package broadcast provides a generic broadcast Subject: a single logical channel
// that accepts values from any number of producers and fans them out to any number
// of dynamically joining receivers.
//
// # Architecture
//
// Each Subject is backed by one actor goroutine that exclusively owns the list of
// subscriber sinks. Handles never touch that list; they submit commands (send,
// subscribe, disconnect) to an unbounded command queue that the actor drains in
// FIFO order. No mutex guards the registry because nothing but the actor reads it.
//
// # Usage
//
//	subject := broadcast.New[uint64](
//		broadcast.WithName("prices"),
//		broadcast.WithLogger(logger),
//	)
//	defer subject.Close()
//
//	rx, err := subject.Subscribe()
//	if err != nil {
//		return err
//	}
//	defer rx.Close()
//
//	go func() {
//		for v := range rx.All(ctx) {
//			fmt.Println("received", v)
//		}
//	}()
//
//	_ = subject.Send(5)
//
// # Delivery Semantics
//
//   - A receiver gets every value sent after its Subscribe call, in send order.
//   - Values sent before Subscribe are never replayed.
//   - Send, Subscribe and Close only enqueue; they never wait for the actor.
//   - A receiver that was closed or became unreachable is pruned lazily, on the next send.
//   - Delivery failures are never reported to publishers.
//
// # Lifecycle
//
// The actor stops when Close is called on any handle, or when every handle was
// released (explicitly with Release, or by becoming unreachable). After that every
// operation fails with ErrClosed, and receivers observe ErrClosed once they have
// consumed the values still buffered for them. A stopped Subject cannot be restarted.
//
//	if err := subject.Send(8); err != nil {
//		var sendErr *broadcast.SendError[uint64]
//		if errors.As(err, &sendErr) {
//			log.Printf("not delivered: %d", sendErr.Value)
//		}
//	}
//
// # Backends
//
// The command queue and every subscriber queue implement Queue. Two backends exist:
// BackendList (mutex-guarded slice, the default) and BackendChannel (pump goroutine
// feeding a Go channel). Select one with WithBackend; the actor loop is shared.
//
// # Payloads
//
// Values are delivered by assignment, one copy per receiver. For large or mutable
// payloads instantiate the Subject with a pointer to an immutable value so every
// receiver shares the same instance.
package broadcast
