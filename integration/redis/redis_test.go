package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subject/integration/redis"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

type message struct {
	Seq  int    `json:"seq"`
	Body string `json:"body"`
}

func setup(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://" + mr.Addr() + "/0",
		RetryAttempts:  1,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func waitChannelSubscribers(t *testing.T, client *goredis.Client, channel string, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		res, err := client.PubSubNumSub(context.Background(), channel).Result()
		return err == nil && res[channel] == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connects and pings", func(t *testing.T) {
		t.Parallel()
		_, client := setup(t)
		assert.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost:6379"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + addr,
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	mr, client := setup(t)
	check := redis.Healthcheck(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.ErrorIs(t, check(context.Background()), redis.ErrHealthcheckFailed)
}

func TestRelay(t *testing.T) {
	t.Parallel()

	t.Run("requires channel", func(t *testing.T) {
		t.Parallel()

		_, client := setup(t)
		subj := broadcast.New[message]()
		defer subj.Close()

		_, err := redis.NewRelay(client, subj, "")
		assert.ErrorIs(t, err, redis.ErrEmptyChannel)
	})

	t.Run("send reaches subscribers through inbound", func(t *testing.T) {
		t.Parallel()

		_, client := setup(t)
		subj := broadcast.New[message]()
		defer subj.Close()

		relay, err := redis.NewRelay(client, subj, "events")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- relay.Run(ctx)() }()
		waitChannelSubscribers(t, client, "events", 1)

		rx, err := subj.Subscribe()
		require.NoError(t, err)
		require.Eventually(t, func() bool { return subj.Stats().Subscribers == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, relay.Send(message{Seq: 1, Body: "a"}))
		require.NoError(t, relay.Send(message{Seq: 2, Body: "b"}))

		recvCtx, recvCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer recvCancel()

		v, err := rx.Recv(recvCtx)
		require.NoError(t, err)
		assert.Equal(t, message{Seq: 1, Body: "a"}, v)
		v, err = rx.Recv(recvCtx)
		require.NoError(t, err)
		assert.Equal(t, message{Seq: 2, Body: "b"}, v)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("inbound did not stop")
		}
	})

	t.Run("inbound drops undecodable payloads", func(t *testing.T) {
		t.Parallel()

		_, client := setup(t)
		subj := broadcast.New[message]()
		defer subj.Close()

		relay, err := redis.NewRelay(client, subj, "mixed")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = relay.Inbound(ctx) }()
		waitChannelSubscribers(t, client, "mixed", 1)

		rx, err := subj.Subscribe()
		require.NoError(t, err)
		require.Eventually(t, func() bool { return subj.Stats().Subscribers == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, client.Publish(ctx, "mixed", "not json").Err())
		require.NoError(t, relay.Publish(ctx, message{Seq: 3}))

		recvCtx, recvCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer recvCancel()
		v, err := rx.Recv(recvCtx)
		require.NoError(t, err)
		assert.Equal(t, 3, v.Seq)
	})

	t.Run("inbound stops when subject closes", func(t *testing.T) {
		t.Parallel()

		_, client := setup(t)
		subj := broadcast.New[message]()

		relay, err := redis.NewRelay(client, subj, "closing")
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- relay.Inbound(context.Background()) }()
		waitChannelSubscribers(t, client, "closing", 1)

		require.NoError(t, subj.Close())

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("inbound did not stop")
		}
	})

	t.Run("outbound mirrors subject onto channel", func(t *testing.T) {
		t.Parallel()

		_, client := setup(t)
		subj := broadcast.New[message]()

		relay, err := redis.NewRelay(client, subj, "mirror")
		require.NoError(t, err)

		ctx := context.Background()
		ps := client.Subscribe(ctx, "mirror")
		defer ps.Close()
		_, err = ps.Receive(ctx)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- relay.Outbound(ctx) }()
		require.Eventually(t, func() bool { return subj.Stats().Subscribers == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, subj.Send(message{Seq: 9, Body: "out"}))

		select {
		case msg := <-ps.Channel():
			assert.JSONEq(t, `{"seq":9,"body":"out"}`, msg.Payload)
		case <-time.After(2 * time.Second):
			t.Fatal("no message mirrored")
		}

		require.NoError(t, subj.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("outbound did not stop")
		}
	})
}
