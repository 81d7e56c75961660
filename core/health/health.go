package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailkit/core/handler"
	"github.com/dmitrymomot/mailkit/core/logger"
	"github.com/dmitrymomot/mailkit/core/response"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// Readiness runs every check and returns "READY", or 503 Service Unavailable
// on the first failure.
//
//	app.Get("/health/ready", health.Readiness[*app.Context](log, mail.Healthcheck(tr)))
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				return response.Error(response.ErrServiceUnavailable)
			}
		}
		return response.String("READY")
	}
}
