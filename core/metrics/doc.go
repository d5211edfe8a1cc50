// Package metrics exposes broadcast subject activity to Prometheus.
//
//	reg := metrics.NewRegistry()
//	subj := broadcast.New[Event](broadcast.WithObserver(metrics.NewObserver(reg, "events")))
//	router.Handle("/metrics", metrics.Handler(reg))
//
// The subscriber gauge follows registrations and lazy pruning, so it may
// count receivers that were closed but not yet pruned by a send.
package metrics
