package relayapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/health"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/core/server"
	"github.com/dmitrymomot/relay/hub"
	"github.com/dmitrymomot/relay/ingress"
	"github.com/dmitrymomot/relay/integration/database/redis"
	"github.com/dmitrymomot/relay/integration/messaging/nats"
	"github.com/dmitrymomot/relay/middleware"
)

// ErrUnknownBackplane is returned for a BACKPLANE value other than none, redis or nats.
var ErrUnknownBackplane = errors.New("unknown backplane")

// App is the assembled relay server.
type App struct {
	config    Config
	hasConfig bool
	logger    *slog.Logger
	router    router.Router[*Context]
	server    *server.Server
	metrics   *prometheus.Registry

	registry  *hub.Registry
	endpoint  *hub.Endpoint
	ingress   *ingress.Service
	imetrics  *ingress.Metrics
	backplane hub.Backplane
	clock     func() time.Time

	checks  []health.Check
	closers []io.Closer
}

type AppOption func(*App) error

// NewApp builds the relay from the environment. Backplane connections are
// established here, so ctx bounds the startup.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.hasConfig {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}
	if app.logger == nil {
		app.logger = newLogger(app.config)
	}
	if app.metrics == nil {
		app.metrics = prometheus.NewRegistry()
		app.metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	hm, err := hub.NewMetrics(app.metrics)
	if err != nil {
		return nil, fmt.Errorf("register hub metrics: %w", err)
	}
	app.imetrics, err = ingress.NewMetrics(app.metrics)
	if err != nil {
		return nil, fmt.Errorf("register ingress metrics: %w", err)
	}

	app.registry = hub.NewRegistry(
		hub.WithLogger(app.logger.With(logger.Component("hub"))),
		hub.WithMetrics(hm),
	)
	app.endpoint = hub.NewEndpoint(app.registry, app.config.Hub,
		hub.WithEndpointLogger(app.logger.With(logger.Component("hub"))),
		hub.WithOriginCheck(app.originAllowed),
	)

	if app.backplane == nil {
		if err := app.connectBackplane(ctx); err != nil {
			return nil, err
		}
	}

	var target hub.Broadcaster = app.registry
	if app.backplane != nil {
		target = hub.NewBackplaneBroadcaster(app.backplane)
	}

	ingressOpts := []ingress.Option{
		ingress.WithLogger(app.logger.With(logger.Component("ingress"))),
		ingress.WithMetrics(app.imetrics),
		ingress.WithDedup(app.config.Ingress.DedupTTL, app.config.Ingress.DedupSize),
	}
	if app.clock != nil {
		ingressOpts = append(ingressOpts, ingress.WithClock(app.clock))
	}
	app.ingress = ingress.NewService(target, ingressOpts...)

	if app.router == nil {
		app.router = router.New[*Context](
			router.WithContextFactory(newContext),
			router.WithErrorHandler(response.ErrorHandler[*Context]),
			router.WithLogger[*Context](app.logger),
			router.WithMiddleware(
				middleware.RequestID[*Context](),
				middleware.LoggingWithLogger[*Context](app.logger),
				middleware.CORSWithConfig[*Context](middleware.CORSConfig{
					AllowOriginFunc:  middleware.AllowOriginHosts(app.config.CORSAllowedHosts...),
					AllowCredentials: true,
				}),
			),
		)
	}
	app.routes()

	if app.server == nil {
		s, err := server.NewFromConfig(app.config.Server,
			server.WithLogger(app.logger.With(logger.Component("server"))),
			server.WithOnShutdown(app.registry.CloseAll),
		)
		if err != nil {
			return nil, err
		}
		app.server = s
	}

	return app, nil
}

// WithConfig uses cfg instead of loading the environment.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		app.hasConfig = true
		return nil
	}
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithServer(server *server.Server) AppOption {
	return func(app *App) error {
		if server == nil {
			return errors.New("server cannot be nil")
		}
		app.server = server
		return nil
	}
}

// WithMetricsRegistry registers the relay collectors on reg and serves it.
func WithMetricsRegistry(reg *prometheus.Registry) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		app.metrics = reg
		return nil
	}
}

// WithBackplane uses bp instead of the backplane named by the configuration.
// Optional checks are added to the readiness probe.
func WithBackplane(bp hub.Backplane, checks ...health.Check) AppOption {
	return func(app *App) error {
		if bp == nil {
			return errors.New("backplane cannot be nil")
		}
		app.backplane = bp
		app.checks = append(app.checks, checks...)
		return nil
	}
}

// WithClock overrides the receipt clock of accepted messages.
func WithClock(now func() time.Time) AppOption {
	return func(app *App) error {
		app.clock = now
		return nil
	}
}

// Handler returns the relay's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Registry returns the local subscriber registry.
func (a *App) Registry() *hub.Registry {
	return a.registry
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run serves until ctx is canceled, then drains in-flight fan-outs and releases
// backplane connections.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(gctx, a.router))
	if a.backplane != nil {
		g.Go(func() error {
			return hub.RunBackplane(gctx, a.backplane, a.registry, a.logger.With(logger.Component("backplane")))
		})
	}

	err := g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), a.drainTimeout())
	defer cancel()
	if derr := a.ingress.Wait(drainCtx); derr != nil {
		a.logger.Warn("in-flight broadcasts not drained", logger.Error(derr))
	}

	return errors.Join(err, a.Close())
}

// Close releases backplane connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) drainTimeout() time.Duration {
	if a.config.Server.ShutdownTimeout > 0 {
		return a.config.Server.ShutdownTimeout
	}
	return server.DefaultShutdownTimeout
}

func (a *App) connectBackplane(ctx context.Context) error {
	log := a.logger.With(logger.Component("backplane"))

	switch strings.ToLower(a.config.Backplane) {
	case "", BackplaneNone:
		return nil

	case BackplaneRedis:
		client, err := redis.Connect(ctx, a.config.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client)
		a.backplane = redis.NewBackplane(client, a.config.Redis.Channel, redis.WithLogger(log))
		a.checks = append(a.checks, health.NewCheck("redis", redis.Healthcheck(client)))

	case BackplaneNATS:
		conn, err := nats.Connect(ctx, a.config.NATS, log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closerFunc(conn.Drain))
		a.backplane = nats.NewBackplane(conn, a.config.NATS.Subject, nats.WithLogger(log))
		a.checks = append(a.checks, health.NewCheck("nats", nats.Healthcheck(conn)))

	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackplane, a.config.Backplane)
	}

	log.Info("backplane connected", logger.Key("kind", a.config.Backplane))
	return nil
}

// originAllowed applies the CORS host list to browser upgrades. Requests without
// an Origin header are not browser requests and are allowed.
func (a *App) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := middleware.AllowOriginHosts(a.config.CORSAllowedHosts...)(origin)
	return ok
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithDevelopment(cfg.AppName)}
	if cfg.Env == "production" {
		opts = []logger.Option{logger.WithProduction(cfg.AppName)}
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			opts = append(opts, logger.WithLevel(level))
		}
	}
	opts = append(opts, logger.WithContextExtractors(middleware.RequestIDExtractor))
	return logger.New(opts...)
}
