package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subject/core/metrics"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

func TestObserver(t *testing.T) {
	t.Parallel()

	t.Run("callbacks update series", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		obs := metrics.NewObserver(reg, "test")

		obs.Subscribed(1)
		obs.Subscribed(2)
		obs.Broadcast(2, 0)
		obs.Broadcast(1, 1)

		assert.Equal(t, 1.0, testutil.ToFloat64(obs.Subscribers))
		assert.Equal(t, 2.0, testutil.ToFloat64(obs.Broadcasts))
		assert.Equal(t, 3.0, testutil.ToFloat64(obs.Deliveries))
		assert.Equal(t, 1.0, testutil.ToFloat64(obs.Pruned))

		obs.Stopped(broadcast.StopDisconnect)
		assert.Equal(t, 0.0, testutil.ToFloat64(obs.Subscribers))
		assert.Equal(t, 1.0, testutil.ToFloat64(obs.Stops.WithLabelValues("disconnect")))
		assert.Equal(t, 0.0, testutil.ToFloat64(obs.Stops.WithLabelValues("released")))
	})

	t.Run("wired into a subject", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		obs := metrics.NewObserver(reg, "wired")
		subj := broadcast.New[int](broadcast.WithObserver(obs))

		rx1, err := subj.Subscribe()
		require.NoError(t, err)
		rx2, err := subj.Subscribe()
		require.NoError(t, err)

		require.NoError(t, subj.Send(1))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err = rx1.Recv(ctx)
		require.NoError(t, err)
		_, err = rx2.Recv(ctx)
		require.NoError(t, err)

		// The observer runs after delivery, so the receivers may see the value first.
		require.Eventually(t, func() bool {
			return testutil.ToFloat64(obs.Deliveries) == 2.0
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 2.0, testutil.ToFloat64(obs.Subscribers))
		assert.Equal(t, 1.0, testutil.ToFloat64(obs.Broadcasts))

		require.NoError(t, subj.Close())
		<-subj.Done()
		assert.Equal(t, 1.0, testutil.ToFloat64(obs.Stops.WithLabelValues("disconnect")))
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		metrics.NewObserver(reg, "dup")
		assert.Panics(t, func() { metrics.NewObserver(reg, "dup") })
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := metrics.NewRegistry()
	obs := metrics.NewObserver(reg, "served")
	obs.Broadcast(3, 0)

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `subject_deliveries_total{subject="served"} 3`)
	assert.Contains(t, string(body), "go_goroutines")
}
