package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

// DefaultPublishTimeout bounds Send when no deadline is available.
const DefaultPublishTimeout = 5 * time.Second

// Relay bridges a broadcast subject with a Redis pub/sub channel.
//
// Inbound feeds every channel message into the subject. Send and Publish
// write to the channel, so with Inbound running every instance sharing the
// channel sees every value exactly once. Outbound mirrors a subject onto the
// channel for instances that only produce; running it together with Inbound
// on the same channel loops values back forever.
type Relay[V any] struct {
	client         redis.UniversalClient
	subject        *broadcast.Subject[V]
	channel        string
	publishTimeout time.Duration
	logger         *slog.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*relayOptions)

type relayOptions struct {
	publishTimeout time.Duration
	logger         *slog.Logger
}

// WithPublishTimeout bounds each Send.
func WithPublishTimeout(d time.Duration) RelayOption {
	return func(o *relayOptions) {
		if d > 0 {
			o.publishTimeout = d
		}
	}
}

// WithLogger configures structured logging for the relay.
func WithLogger(l *slog.Logger) RelayOption {
	return func(o *relayOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRelay creates a relay between subject and the named channel.
func NewRelay[V any](client redis.UniversalClient, subject *broadcast.Subject[V], channel string, opts ...RelayOption) (*Relay[V], error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}

	o := &relayOptions{
		publishTimeout: DefaultPublishTimeout,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Relay[V]{
		client:         client,
		subject:        subject,
		channel:        channel,
		publishTimeout: o.publishTimeout,
		logger: o.logger.With(
			logger.Component("relay"),
			logger.Transport("redis"),
			logger.Channel(channel),
		),
	}, nil
}

// Publish encodes v as JSON and publishes it on the channel.
func (r *Relay[V]) Publish(ctx context.Context, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Send publishes v within the configured publish timeout.
func (r *Relay[V]) Send(v V) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.publishTimeout)
	defer cancel()
	return r.Publish(ctx, v)
}

// Inbound subscribes to the channel and sends every decoded message into the
// subject. It returns nil when ctx ends or the subject closes.
func (r *Relay[V]) Inbound(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = ps.Close()
	}()

	// Wait for the subscription to be confirmed so nothing published afterwards is missed.
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrSubscribeFailed, err)
	}

	r.logger.InfoContext(ctx, "redis relay subscribed")
	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.subject.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var v V
			if err := json.Unmarshal([]byte(msg.Payload), &v); err != nil {
				r.logger.WarnContext(ctx, "dropping undecodable message", logger.Error(err))
				continue
			}
			if err := r.subject.Send(v); err != nil {
				return nil
			}
		}
	}
}

// Outbound subscribes to the subject and publishes every value on the channel.
// Publish failures are logged and the value is skipped. It returns nil when
// ctx ends or the subject closes.
func (r *Relay[V]) Outbound(ctx context.Context) error {
	rx, err := r.subject.Subscribe()
	if err != nil {
		return nil
	}
	defer rx.Close()

	for {
		v, err := rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, broadcast.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := r.Publish(ctx, v); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.ErrorContext(ctx, "failed to publish value", logger.Error(err))
		}
	}
}

// Run returns an errgroup-compatible func that runs Inbound.
func (r *Relay[V]) Run(ctx context.Context) func() error {
	return func() error {
		return r.Inbound(ctx)
	}
}
