// Package middleware provides the HTTP middleware used by the relay server:
// request IDs, request logging, CORS and rate limiting.
//
// All middleware follow the same pattern: a generic constructor with defaults
// and a WithConfig variant, parameterized by the handler.Context type.
//
//	r := router.New[*router.Context](
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.LoggingWithLogger[*router.Context](log),
//			middleware.CORS[*router.Context](),
//		),
//	)
//
// # CORS
//
// CORS allows origins on localhost with credentials. AllowOriginHosts builds a
// host-based origin check for other hosts:
//
//	middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
//		AllowOriginFunc:  middleware.AllowOriginHosts("localhost", "relay.internal"),
//		AllowCredentials: true,
//	})
//
// Preflight requests only reach the middleware when the route is registered for OPTIONS.
//
// # Rate limiting
//
// RateLimit applies one token bucket to every request passing through it and
// answers 429 with a Retry-After header when the bucket is empty:
//
//	api := r.With(middleware.RateLimit[*router.Context](50, 100))
//	api.Post("/api/messages", ingress.Submit)
//
// # Logging
//
// The logging middleware forwards http.Hijacker so WebSocket upgrades pass through;
// upgraded requests are logged with status 101 once the connection closes.
package middleware
