// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	r.Handle("/health/live", health.Liveness())
//	r.Handle("/health/ready", health.Readiness(
//		log,
//		health.Subject(subj),
//		redis.Healthcheck(client),
//	))
//
// Dependency checks follow the func(context.Context) error signature, so
// helpers such as redis.Healthcheck plug in directly.
package health
