// Package logger provides structured logging helpers built on log/slog.
//
// New builds a *slog.Logger from functional options; the attribute helpers give
// common keys a consistent name across the module.
//
//	log := logger.New(
//		logger.WithProduction("subjectd"),
//		logger.WithLevelName("debug"),
//	)
//
//	log.Info("relay started",
//		logger.Component("redis_relay"),
//		logger.Channel("prices"),
//	)
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops:
//
//	log.Error("publish failed", logger.Error(err)) // safe when err == nil
//
// Library components accept a *slog.Logger through a With...Logger option and
// default to Discard, so nothing is printed unless the caller opts in.
package logger
