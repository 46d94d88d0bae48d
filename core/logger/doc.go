// Package logger provides structured logging built on log/slog.
//
// Loggers are created with functional options. Development preset writes text at
// debug level; production writes JSON at info level:
//
//	log := logger.New(logger.WithProduction("relay"))
//	log.Info("relay started", logger.Component("server"))
//
// Context extractors inject request-scoped attributes into records logged
// with a context:
//
//	log := logger.New(
//		logger.WithDevelopment("relay"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(r.Context(), "submission accepted")
//
// Attribute helpers return an empty slog.Attr for nil errors and empty strings,
// so they can be passed unconditionally:
//
//	log.Warn("delivery failed", logger.ConnectionID(id), logger.Error(err))
package logger
