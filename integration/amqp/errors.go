package amqp

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("empty amqp connection URL")
	ErrDialFailed         = errors.New("failed to connect to amqp broker")
	ErrEmptyExchange      = errors.New("empty amqp exchange name")
	ErrDeclareFailed      = errors.New("failed to declare amqp topology")
	ErrConsumeFailed      = errors.New("failed to start amqp consumer")
	ErrPublishFailed      = errors.New("amqp publish failed")
)
