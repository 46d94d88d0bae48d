package relayapp

import (
	"github.com/dmitrymomot/relay/core/server"
	"github.com/dmitrymomot/relay/hub"
	"github.com/dmitrymomot/relay/ingress"
	"github.com/dmitrymomot/relay/integration/database/redis"
	"github.com/dmitrymomot/relay/integration/messaging/nats"
)

// Backplane kinds.
const (
	BackplaneNone  = "none"
	BackplaneRedis = "redis"
	BackplaneNATS  = "nats"
)

type Config struct {
	Server  server.Config
	Hub     hub.Config
	Ingress ingress.Config
	Redis   redis.Config
	NATS    nats.Config

	AppName string `env:"APP_NAME" envDefault:"relay"`
	Env     string `env:"APP_ENV" envDefault:"development"`
	// LogLevel overrides the level of the environment preset.
	LogLevel string `env:"LOG_LEVEL"`

	CORSAllowedHosts []string `env:"CORS_ALLOWED_HOSTS" envDefault:"localhost" envSeparator:","`
	Backplane        string   `env:"BACKPLANE" envDefault:"none"`
	MetricsPath      string   `env:"METRICS_PATH" envDefault:"/metrics"`
}

// DefaultConfig returns the configuration used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		Server:           server.DefaultConfig(),
		Hub:              hub.DefaultConfig(),
		Ingress:          ingress.DefaultConfig(),
		AppName:          "relay",
		Env:              "development",
		CORSAllowedHosts: []string{"localhost"},
		Backplane:        BackplaneNone,
		MetricsPath:      "/metrics",
	}
}
