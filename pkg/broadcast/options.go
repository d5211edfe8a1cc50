package broadcast

import (
	"io"
	"log/slog"
)

type options struct {
	name     string
	backend  Backend
	logger   *slog.Logger
	observer Observer
}

// Option configures a Subject.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		name:     "subject",
		backend:  BackendList,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: nopObserver{},
	}
}

// WithName sets the name attached to the subject's log records.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithBackend selects the queue implementation for commands and subscriber sinks.
// Default is BackendList.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger configures structured logging for the actor.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers callbacks invoked from the actor loop,
// typically a metrics collector.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}
