// Package logger builds *slog.Logger values and provides attribute helpers
// with consistent key names.
//
//	log := logger.New(
//		logger.WithDevelopment("mailkit"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//
//	log.InfoContext(ctx, "mail sent",
//		logger.Component("mail"),
//		logger.Transport("smtp"),
//		logger.Recipients(len(msg.Recipients)),
//	)
//
// Development loggers use the text handler at debug level. Production loggers
// use JSON at info level. Context extractors add request-scoped attributes
// (such as the request ID) to every record logged with a context.
//
// # Testing
//
// Capture output with WithOutput:
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//
// Libraries in this module log nothing unless given a logger; Discard returns
// the default they fall back to.
package logger
