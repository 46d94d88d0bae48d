package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
)

// DefaultCheckTimeout bounds a single dependency check.
const DefaultCheckTimeout = 2 * time.Second

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// NewCheck pairs a probe with the name used in failure logs.
func NewCheck(name string, fn func(context.Context) error) Check {
	return Check{Name: name, Fn: fn}
}

// Readiness verifies all dependencies respond within DefaultCheckTimeout.
// Returns "READY" if every check passes, 503 Service Unavailable otherwise.
//
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.NewCheck("redis", redis.Healthcheck(client)),
//	))
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if check.Fn == nil {
				continue
			}
			checkCtx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
			err := check.Fn(checkCtx)
			cancel()
			if err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component(check.Name),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable)
			}
		}

		return response.String("READY")
	}
}
