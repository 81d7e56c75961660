// Package middleware provides request ID and request logging middleware for
// handlers built on handler.Context.
//
// All middleware follows the same pattern: a generic constructor with the
// default configuration, a WithConfig variant, and a Skip hook.
//
//	app.New(
//		app.WithMiddleware(
//			middleware.RequestID[*app.Context](),
//			middleware.LoggingWithLogger[*app.Context](log),
//		),
//	)
//
// # Request ID
//
// RequestID stores a UUID in the request context and echoes it in the
// X-Request-ID response header. GetRequestID reads it back from any context
// derived from the request, including the detached context used for
// background mail sends. RequestIDExtractor plugs into the logger so every
// record written with a request context carries the ID:
//
//	log := logger.New(
//		logger.WithProduction("molten"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//
// # Logging
//
// Logging writes one record per request after the response is rendered, with
// method, path, status, size and duration. Errors returned by the response
// and 5xx statuses are logged at error level; 4xx statuses and requests slower
// than SlowRequestThreshold at warning level.
package middleware
