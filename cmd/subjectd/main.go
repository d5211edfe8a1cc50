package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/subject/core/config"
	"github.com/dmitrymomot/subject/core/health"
	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/core/metrics"
	"github.com/dmitrymomot/subject/core/server"
	"github.com/dmitrymomot/subject/integration/amqp"
	"github.com/dmitrymomot/subject/integration/redis"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

var errAMQPClosed = errors.New("amqp connection closed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	log := newLogger(cfg)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("subjectd stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithDevelopment(cfg.AppName)}
	if cfg.AppEnv == "production" {
		opts = []logger.Option{logger.WithProduction(cfg.AppName)}
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	subj := broadcast.New[uint64](
		broadcast.WithName(cfg.AppName),
		broadcast.WithBackend(cfg.Backend),
		broadcast.WithLogger(log),
		broadcast.WithObserver(metrics.NewObserver(reg, cfg.AppName)),
	)
	defer func() {
		_ = subj.Close()
		<-subj.Done()
	}()

	g, ctx := errgroup.WithContext(ctx)

	rt := routes{
		subject:   subj,
		publisher: subj,
		registry:  reg,
		logger:    log,
		keepAlive: cfg.KeepAlive,
		maxBody:   cfg.MaxBody,
		checks:    []health.Check{health.Subject(subj)},
	}

	switch cfg.Relay {
	case "", relayNone:
	case relayRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		relay, err := redis.NewRelay(client, subj, cfg.Redis.Channel,
			redis.WithLogger(log),
			redis.WithPublishTimeout(cfg.Redis.PublishTimeout),
		)
		if err != nil {
			return err
		}

		rt.publisher = relay
		rt.checks = append(rt.checks, redis.Healthcheck(client))
		g.Go(relay.Run(ctx))
	case relayAMQP:
		conn, ch, err := amqp.Dial(cfg.AMQP)
		if err != nil {
			return err
		}
		defer conn.Close()

		relay, err := amqp.NewRelay(ch, subj, cfg.AMQP, amqp.WithLogger(log))
		if err != nil {
			return err
		}

		rt.publisher = relay
		rt.checks = append(rt.checks, func(context.Context) error {
			if conn.IsClosed() {
				return errAMQPClosed
			}
			return nil
		})
		g.Go(relay.Run(ctx))
	default:
		return fmt.Errorf("unknown relay %q", cfg.Relay)
	}

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log),
		server.WithOnShutdown(func() { _ = subj.Close() }),
	)
	if err != nil {
		return err
	}
	g.Go(srv.Run(ctx, rt.handler()))

	log.InfoContext(ctx, "subjectd started",
		logger.Subject(cfg.AppName),
		slog.String("backend", cfg.Backend.String()),
		slog.String("relay", cfg.Relay),
	)

	return g.Wait()
}
