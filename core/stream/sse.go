package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/pkg/clientip"
)

// SSE returns a handler that streams every value from src as a server-sent event.
// Each event carries a sequential id. Keepalive comments are written while idle.
// The response ends when the client disconnects or the subject closes.
func SSE[V any](src Source[V], encode Encoder[V], opts ...Option) http.Handler {
	o := newOptions(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := o.logger.With(
			logger.Component("stream"),
			logger.Transport("sse"),
			logger.ConnectionID(uuid.NewString()),
			logger.ClientIP(clientip.GetIP(r)),
		)

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, ErrStreamingUnsupported.Error(), http.StatusInternalServerError)
			return
		}

		rx, err := src.Subscribe()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		defer rx.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		_, _ = fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		log.DebugContext(r.Context(), "sse subscriber connected")
		defer log.DebugContext(r.Context(), "sse subscriber disconnected")

		ctx := r.Context()
		var seq uint64

		for {
			v, err := recvOrIdle(ctx, rx.Recv, o.keepAlive)
			switch {
			case errors.Is(err, errIdle):
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
				continue
			case err != nil:
				return
			}

			data, err := encode(v)
			if err != nil {
				log.ErrorContext(ctx, "failed to encode value", logger.Error(err))
				continue
			}

			seq++
			if err := writeEvent(w, o.eventName, strconv.FormatUint(seq, 10), data); err != nil {
				return
			}
			flusher.Flush()
		}
	})
}

var errIdle = errors.New("idle")

// recvOrIdle waits at most idle for the next value, reporting errIdle on timeout.
func recvOrIdle[V any](ctx context.Context, recv func(context.Context) (V, error), idle time.Duration) (V, error) {
	if idle <= 0 {
		return recv(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, idle)
	defer cancel()

	v, err := recv(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return v, errIdle
	}
	return v, err
}

func writeEvent(w io.Writer, name, id string, data []byte) error {
	var b strings.Builder
	if name != "" {
		b.WriteString("event: ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	b.WriteString("id: ")
	b.WriteString(id)
	b.WriteByte('\n')
	for _, line := range strings.Split(string(data), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
