package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/subject/core/logger"
)

// Check reports whether a dependency is usable.
type Check func(context.Context) error

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
//
// Example:
//
//	router.Handle("/health/ready", health.Readiness(
//		log,
//		health.Subject(subj),
//		redis.Healthcheck(client),
//	))
func Readiness(log *slog.Logger, checks ...Check) http.Handler {
	if log == nil {
		log = logger.Discard()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				writeText(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}

		writeText(w, http.StatusOK, "READY")
	})
}
