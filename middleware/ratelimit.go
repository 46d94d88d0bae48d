package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/response"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Limiter is the token bucket shared by every request passing the middleware
	Limiter *rate.Limiter
	// ErrorHandler builds the rejection response (default: 429 Too Many Requests)
	ErrorHandler func(ctx handler.Context, retryAfter time.Duration) handler.Response
	// OnReject is called for every rejected request
	OnReject func(ctx handler.Context)
}

// RateLimit creates a rate limit middleware allowing perSecond requests with the given burst.
func RateLimit[C handler.Context](perSecond float64, burst int) handler.Middleware[C] {
	return RateLimitWithConfig[C](RateLimitConfig{
		Limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	})
}

// RateLimitWithConfig rejects requests once the limiter has no tokens left.
// Rejected requests carry a Retry-After header.
func RateLimitWithConfig[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, retryAfter time.Duration) handler.Response {
			return response.Error(response.ErrTooManyRequests.WithDetails(map[string]any{
				"retry_after": strconv.Itoa(retryAfterSeconds(retryAfter)),
			}))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			now := time.Now()
			reservation := cfg.Limiter.ReserveN(now, 1)
			if reservation.OK() {
				delay := reservation.DelayFrom(now)
				if delay == 0 {
					return next(ctx)
				}
				// Give the token back; the request is rejected, not queued.
				reservation.CancelAt(now)

				if cfg.OnReject != nil {
					cfg.OnReject(ctx)
				}
				resp := cfg.ErrorHandler(ctx, delay)
				return func(w http.ResponseWriter, r *http.Request) error {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
					return resp(w, r)
				}
			}

			if cfg.OnReject != nil {
				cfg.OnReject(ctx)
			}
			return cfg.ErrorHandler(ctx, 0)
		}
	}
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
