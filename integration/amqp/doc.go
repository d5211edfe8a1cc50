// Package amqp relays broadcast subjects over a RabbitMQ topic exchange.
//
// NewRelay declares a durable topic exchange and an exclusive queue bound to
// "<prefix>.*", so each instance receives every value published under the prefix:
//
//	conn, ch, err := amqp.Dial(cfg)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	relay, err := amqp.NewRelay(ch, subj, cfg, amqp.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(relay.Run(ctx))
//
// Values are published as JSON with routing key "<prefix>.<key>". Relay only
// needs the Channel interface, which *amqp091.Channel satisfies.
package amqp
