// Package redis connects to Redis and relays broadcast subjects over Redis pub/sub.
//
// Connect validates the URL, retries the initial ping with exponential backoff
// and returns a ready go-redis client. Healthcheck wraps a ping for readiness probes.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Relay fans values out across instances. Every instance runs Inbound and
// publishes through the relay instead of the subject:
//
//	relay, err := redis.NewRelay(client, subj, cfg.Channel, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(relay.Run(ctx))
//	_ = relay.Send(event) // reaches subscribers on every instance
//
// Values travel as JSON. Messages that fail to decode are logged and dropped.
//
// # Error Handling
//
//   - ErrFailedToParseRedisConnString: the connection URL is malformed
//   - ErrRedisNotReady: Redis did not answer within the retry budget
//   - ErrEmptyConnectionURL: no connection URL was provided
//   - ErrHealthcheckFailed: the health check ping failed
//   - ErrEmptyChannel: a relay was created without a channel name
//   - ErrSubscribeFailed: the channel subscription was not confirmed
//   - ErrPublishFailed: PUBLISH returned an error
package redis
