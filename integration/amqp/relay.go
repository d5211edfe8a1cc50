package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

// DefaultPublishTimeout bounds Send when the config leaves it unset.
const DefaultPublishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel used by Relay.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var _ Channel = (*amqp.Channel)(nil)

// Relay bridges a broadcast subject with a topic exchange.
// It follows the same contract as the Redis relay: run Inbound everywhere
// and publish through Send, or mirror a producer-only subject with Outbound.
type Relay[V any] struct {
	ch      Channel
	subject *broadcast.Subject[V]
	cfg     Config
	queue   string
	logger  *slog.Logger
}

// Option configures a Relay.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger configures structured logging for the relay.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRelay declares a durable topic exchange, a queue bound to every key
// under cfg.Prefix, and returns a relay using them.
func NewRelay[V any](ch Channel, subject *broadcast.Subject[V], cfg Config, opts ...Option) (*Relay[V], error) {
	if cfg.Exchange == "" {
		return nil, ErrEmptyExchange
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}

	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, errors.Join(ErrDeclareFailed, err)
	}

	q, err := ch.QueueDeclare(
		cfg.Queue,
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, errors.Join(ErrDeclareFailed, err)
	}

	if err := ch.QueueBind(q.Name, cfg.BindingKey(), cfg.Exchange, false, nil); err != nil {
		return nil, errors.Join(ErrDeclareFailed, err)
	}

	return &Relay[V]{
		ch:      ch,
		subject: subject,
		cfg:     cfg,
		queue:   q.Name,
		logger: o.logger.With(
			logger.Component("relay"),
			logger.Transport("amqp"),
			logger.Channel(cfg.Exchange),
		),
	}, nil
}

// Publish encodes v as JSON and publishes it with the configured routing key.
func (r *Relay[V]) Publish(ctx context.Context, v V) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	err = r.ch.PublishWithContext(ctx, r.cfg.Exchange, r.cfg.RoutingKey(), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Send publishes v within the configured publish timeout.
func (r *Relay[V]) Send(v V) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.PublishTimeout)
	defer cancel()
	return r.Publish(ctx, v)
}

// Inbound consumes the bound queue and sends every decoded delivery into the
// subject. It returns nil when ctx ends, the subject closes or the broker
// closes the delivery channel.
func (r *Relay[V]) Inbound(ctx context.Context) error {
	msgs, err := r.ch.Consume(r.queue, "", true, false, false, false, nil)
	if err != nil {
		return errors.Join(ErrConsumeFailed, err)
	}

	r.logger.InfoContext(ctx, "amqp relay consuming", slog.String("queue", r.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.subject.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			var v V
			if err := json.Unmarshal(msg.Body, &v); err != nil {
				r.logger.WarnContext(ctx, "dropping undecodable delivery",
					logger.Error(err),
					slog.String("routing_key", msg.RoutingKey),
				)
				continue
			}
			if err := r.subject.Send(v); err != nil {
				return nil
			}
		}
	}
}

// Outbound subscribes to the subject and publishes every value to the exchange.
func (r *Relay[V]) Outbound(ctx context.Context) error {
	rx, err := r.subject.Subscribe()
	if err != nil {
		return nil
	}
	defer rx.Close()

	for v := range rx.All(ctx) {
		if err := r.Publish(ctx, v); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.ErrorContext(ctx, "failed to publish value", logger.Error(err))
		}
	}
	return nil
}

// Run returns an errgroup-compatible func that runs Inbound.
func (r *Relay[V]) Run(ctx context.Context) func() error {
	return func() error {
		return r.Inbound(ctx)
	}
}
