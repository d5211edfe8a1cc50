package stream

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

// Publisher accepts values for broadcast. *broadcast.Subject satisfies it.
type Publisher[V any] interface {
	Send(v V) error
}

// Source hands out subscriptions. *broadcast.Subject satisfies it.
type Source[V any] interface {
	Subscribe() (*broadcast.Receiver[V], error)
}

// Publish returns a handler that decodes the request body and sends it.
// Responds 202 on success, 400 on a bad body, 413 on an oversized body,
// 405 for methods other than POST and 503 once the subject is closed.
func Publish[V any](pub Publisher[V], decode Decoder[V], opts ...Option) http.Handler {
	o := newOptions(opts)
	log := o.logger.With(logger.Component("stream"), logger.Transport("http"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, o.maxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, ErrEmptyBody.Error(), http.StatusBadRequest)
			return
		}

		v, err := decode(data)
		if err != nil {
			http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := pub.Send(v); err != nil {
			log.WarnContext(r.Context(), "publish rejected", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		log.DebugContext(r.Context(), "value published", slog.Int("bytes", len(data)))
		w.WriteHeader(http.StatusAccepted)
	})
}
