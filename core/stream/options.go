package stream

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultKeepAlive is the interval between SSE keepalive comments and websocket pings.
	DefaultKeepAlive = 30 * time.Second

	// DefaultWriteWait bounds a single websocket write.
	DefaultWriteWait = 10 * time.Second

	// DefaultMaxBodySize limits publish request bodies.
	DefaultMaxBodySize int64 = 64 << 10
)

type options struct {
	logger      *slog.Logger
	keepAlive   time.Duration
	writeWait   time.Duration
	maxBodySize int64
	eventName   string
	upgrader    *websocket.Upgrader
}

// Option configures the handlers in this package.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		keepAlive:   DefaultKeepAlive,
		writeWait:   DefaultWriteWait,
		maxBodySize: DefaultMaxBodySize,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithLogger configures structured logging for connection lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKeepAlive sets the keepalive interval. Zero or negative disables keepalives.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		o.keepAlive = d
	}
}

// WithWriteWait bounds each websocket write.
func WithWriteWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeWait = d
		}
	}
}

// WithMaxBodySize limits the size of publish request bodies.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithEventName sets the SSE "event:" field written before each value.
func WithEventName(name string) Option {
	return func(o *options) {
		o.eventName = name
	}
}

// WithReadBuffer sets the websocket read buffer size.
func WithReadBuffer(size int) Option {
	return func(o *options) {
		o.upgrader.ReadBufferSize = size
	}
}

// WithWriteBuffer sets the websocket write buffer size.
func WithWriteBuffer(size int) Option {
	return func(o *options) {
		o.upgrader.WriteBufferSize = size
	}
}

// WithOriginCheck sets the websocket origin validator.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(o *options) {
		o.upgrader.CheckOrigin = fn
	}
}

// WithAllowAnyOrigin accepts websocket upgrades from every origin.
func WithAllowAnyOrigin() Option {
	return func(o *options) {
		o.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}
