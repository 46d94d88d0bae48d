package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/relay/core/handler"
)

// CORSConfig defines configuration options for CORS middleware.
type CORSConfig struct {
	// Skip allows bypassing CORS handling for specific requests
	Skip func(ctx handler.Context) bool

	// AllowOrigins specifies exact allowed origins. "*" allows all origins.
	AllowOrigins []string

	// AllowMethods specifies allowed HTTP methods (default: GET, POST, OPTIONS)
	AllowMethods []string

	// AllowHeaders specifies allowed request headers
	AllowHeaders []string

	// ExposeHeaders specifies which headers are exposed to the client
	ExposeHeaders []string

	// AllowCredentials allows cookies and authorization headers.
	// Never sent together with a wildcard origin.
	AllowCredentials bool

	// MaxAge specifies how long preflight requests can be cached (in seconds)
	MaxAge int

	// AllowOriginFunc provides custom origin validation logic and takes precedence
	// over AllowOrigins. Returns the allowed origin value and whether it is allowed.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS returns a CORS middleware that allows origins on localhost, with credentials.
func CORS[C handler.Context]() handler.Middleware[C] {
	return CORSWithConfig[C](CORSConfig{
		AllowOriginFunc:  AllowOriginHosts("localhost"),
		AllowCredentials: true,
	})
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests are answered directly: 204 when allowed, 403 otherwise.
// The route must be registered for OPTIONS for the preflight to reach the middleware.
func CORSWithConfig[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}

	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
			"Idempotency-Key",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	allowOriginsMap := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOriginsMap[origin] = true
	}

	resolve := func(origin string) (string, bool) {
		switch {
		case origin == "":
			return "", false
		case cfg.AllowOriginFunc != nil:
			return cfg.AllowOriginFunc(origin)
		case allowOriginsMap["*"]:
			return "*", true
		case allowOriginsMap[origin]:
			return origin, true
		}
		return "", false
	}

	setCommon := func(h http.Header, allowedOrigin string) {
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		if cfg.AllowCredentials && allowedOrigin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Add("Vary", "Origin")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			allowedOrigin, allowed := resolve(req.Header.Get("Origin"))

			if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
				methodAllowed := slices.Contains(cfg.AllowMethods, req.Header.Get("Access-Control-Request-Method"))

				return func(w http.ResponseWriter, r *http.Request) error {
					if !allowed || !methodAllowed {
						w.WriteHeader(http.StatusForbidden)
						return nil
					}

					headers := w.Header()
					setCommon(headers, allowedOrigin)
					headers.Set("Access-Control-Allow-Methods", allowMethods)
					if r.Header.Get("Access-Control-Request-Headers") != "" {
						headers.Set("Access-Control-Allow-Headers", allowHeaders)
					}
					if cfg.MaxAge > 0 {
						headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
					headers.Add("Vary", "Access-Control-Request-Method")
					headers.Add("Vary", "Access-Control-Request-Headers")

					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			response := next(ctx)
			if !allowed {
				return response
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				setCommon(w.Header(), allowedOrigin)
				if exposeHeaders != "" {
					w.Header().Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				return response(w, r)
			}
		}
	}
}

// AllowOriginHosts returns an AllowOriginFunc that allows origins whose host
// (without port) matches one of hosts, over any scheme and port.
func AllowOriginHosts(hosts ...string) func(origin string) (string, bool) {
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[strings.ToLower(strings.TrimSpace(h))] = true
	}

	return func(origin string) (string, bool) {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}
		if allowed[strings.ToLower(u.Hostname())] {
			return origin, true
		}
		return "", false
	}
}
