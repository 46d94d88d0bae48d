// Package ingress accepts message submissions and hands them to a fan-out target.
//
// Submit validates the text, stamps it with the receipt time in UTC and dispatches
// the broadcast on a detached goroutine. The caller learns about acceptance only:
//
//	svc := ingress.NewService(registry, ingress.WithDedup(cfg.DedupTTL, cfg.DedupSize))
//	r.With(ingress.RateLimit[*router.Context](cfg, metrics)).
//		Post(cfg.Path, ingress.Handler[*router.Context](svc, cfg))
//
// Producers that retry may send an Idempotency-Key header. Repeats of a key inside the
// dedup window are answered with 202 without broadcasting again.
//
// On shutdown, Wait drains fan-outs that are still in flight.
package ingress
