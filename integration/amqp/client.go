package amqp

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dial opens a broker connection and a channel on it.
// Closing the returned connection closes the channel as well.
func Dial(cfg Config) (*amqp.Connection, *amqp.Channel, error) {
	if cfg.URL == "" {
		return nil, nil, ErrEmptyConnectionURL
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, errors.Join(ErrDialFailed, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errors.Join(ErrDialFailed, err)
	}

	return conn, ch, nil
}
