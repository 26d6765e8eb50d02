// Package logger builds slog loggers with environment-driven configuration
// and context-aware attribute injection.
//
// The factory produces JSON loggers for production pipelines and text
// loggers for development. Context extractors pull request-scoped values
// (most importantly the resolved tenant) into every record logged with a
// context, so cross-tenant debugging never depends on callers remembering
// to attach the tenant themselves.
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "order created", logger.Error(err))
package logger
