package relayapp

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/health"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/hub"
	"github.com/dmitrymomot/relay/ingress"
)

func (a *App) routes() {
	r := a.router
	cfg := a.config.Ingress

	r.Get("/health/live", health.Liveness[*Context])
	r.Get("/health/ready", health.Readiness[*Context](a.logger, a.checks...))
	r.HandleHTTP(http.MethodGet, a.metricsPath(), promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))

	r.Get(a.endpoint.Path(), hub.Handler[*Context](a.endpoint))
	r.Options(a.endpoint.Path(), preflight)

	r.With(ingress.RateLimit[*Context](cfg, a.imetrics)).
		Post(ingressPath(cfg), ingress.Handler[*Context](a.ingress, cfg))
	r.Options(ingressPath(cfg), preflight)
}

// preflight answers OPTIONS requests the CORS middleware let through.
func preflight(*Context) handler.Response {
	return response.NoContent()
}

func (a *App) metricsPath() string {
	if a.config.MetricsPath == "" {
		return "/metrics"
	}
	return a.config.MetricsPath
}

func ingressPath(cfg ingress.Config) string {
	if cfg.Path == "" {
		return ingress.DefaultConfig().Path
	}
	return cfg.Path
}
