// Package health provides HTTP handlers for relay health probes.
//
// Handlers:
//   - Liveness: process is running (no dependency checks)
//   - Readiness: every named dependency check passes
//
// Usage:
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.NewCheck("backplane", backplane.Healthcheck),
//	))
package health
