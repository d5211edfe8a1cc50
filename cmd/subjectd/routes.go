package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/subject/core/health"
	"github.com/dmitrymomot/subject/core/metrics"
	"github.com/dmitrymomot/subject/core/stream"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

type routes struct {
	subject   *broadcast.Subject[uint64]
	publisher stream.Publisher[uint64]
	registry  prometheus.Gatherer
	logger    *slog.Logger
	keepAlive time.Duration
	maxBody   int64
	checks    []health.Check
}

func (rt routes) handler() http.Handler {
	opts := []stream.Option{
		stream.WithLogger(rt.logger),
		stream.WithKeepAlive(rt.keepAlive),
		stream.WithMaxBodySize(rt.maxBody),
		stream.WithEventName("value"),
		stream.WithAllowAnyOrigin(),
	}

	r := mux.NewRouter()
	r.Handle("/publish", stream.Publish(rt.publisher, decodeValue, opts...)).Methods(http.MethodPost)
	r.Handle("/ws", stream.WebSocket(rt.subject, encodeValue, opts...)).Methods(http.MethodGet)
	r.Handle("/events", stream.SSE(rt.subject, encodeValue, opts...)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler(rt.registry)).Methods(http.MethodGet)

	h := r.PathPrefix("/health").Subrouter()
	h.Handle("/live", health.Liveness()).Methods(http.MethodGet)
	h.Handle("/ready", health.Readiness(rt.logger, rt.checks...)).Methods(http.MethodGet)

	return r
}

// Values travel as bare decimal numbers, both in request bodies and on the wire.
func decodeValue(data []byte) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
}

func encodeValue(v uint64) ([]byte, error) {
	return strconv.AppendUint(nil, v, 10), nil
}
