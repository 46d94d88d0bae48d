package nats

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/relay/core/logger"
)

// Options builds the connection options for cfg, logging connection events to log.
func Options(cfg Config, log *slog.Logger) []nats.Option {
	if log == nil {
		log = logger.Nop()
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", logger.Key("url", c.ConnectedUrlRedacted()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("nats connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("nats async error", logger.Error(err))
		}),
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnectTimeout))
	}
	return opts
}

// Connect dials cfg.URL, retrying the first connect with exponential backoff.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if cfg.RetryInterval > 0 {
		b.InitialInterval = cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	opts := Options(cfg, log)
	var conn *nats.Conn
	err := backoff.Retry(func() error {
		var err error
		conn, err = nats.Connect(cfg.URL, opts...)
		return err
	}, policy)
	if err != nil {
		return nil, errors.Join(ErrNotReady, err)
	}

	return conn, nil
}

// Healthcheck returns a readiness check that flushes a round trip to the server.
func Healthcheck(conn *nats.Conn) func(context.Context) error {
	return func(ctx context.Context) error {
		if !conn.IsConnected() {
			return errors.Join(ErrHealthcheckFailed, ErrNotConnected)
		}
		if err := conn.FlushWithContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
