package main

import (
	"time"

	"github.com/dmitrymomot/subject/core/server"
	"github.com/dmitrymomot/subject/integration/amqp"
	"github.com/dmitrymomot/subject/integration/redis"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

// Relay names.
const (
	relayNone  = "none"
	relayRedis = "redis"
	relayAMQP  = "amqp"
)

// Config is loaded from the environment and an optional .env file.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"subjectd"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	Backend   broadcast.Backend `env:"SUBJECT_BACKEND" envDefault:"list"`
	Relay     string            `env:"SUBJECT_RELAY" envDefault:"none"`
	KeepAlive time.Duration     `env:"STREAM_KEEPALIVE" envDefault:"30s"`
	MaxBody   int64             `env:"PUBLISH_MAX_BODY" envDefault:"65536"`

	Server server.Config
	Redis  redis.Config
	AMQP   amqp.Config
}
