package client

import "time"

// Config holds the consumer side settings.
type Config struct {
	BaseURL      string `env:"RELAY_URL" envDefault:"http://localhost:8080"`
	HubPath      string `env:"RELAY_HUB_PATH" envDefault:"/hubs/messages"`
	MessagesPath string `env:"RELAY_MESSAGES_PATH" envDefault:"/api/messages"`
	// MaxRetries is the number of attempts per SendMessage. Zero or less selects the default.
	MaxRetries     int           `env:"RELAY_MAX_RETRIES" envDefault:"3"`
	RetryDelay     time.Duration `env:"RELAY_RETRY_DELAY" envDefault:"1s"`
	RequestTimeout time.Duration `env:"RELAY_REQUEST_TIMEOUT" envDefault:"10s"`
	// ReconnectDelays is the wait before each reconnect attempt. The connection gives up
	// once they are exhausted.
	ReconnectDelays []time.Duration `env:"RELAY_RECONNECT_DELAYS" envDefault:"0s,2s,10s,30s" envSeparator:","`
}

// DefaultConfig returns the defaults used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:8080",
		HubPath:         "/hubs/messages",
		MessagesPath:    "/api/messages",
		MaxRetries:      3,
		RetryDelay:      time.Second,
		RequestTimeout:  10 * time.Second,
		ReconnectDelays: DefaultReconnectDelays(),
	}
}

// DefaultReconnectDelays returns the reconnect schedule used when none is configured.
func DefaultReconnectDelays() []time.Duration {
	return []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.HubPath == "" {
		c.HubPath = d.HubPath
	}
	if c.MessagesPath == "" {
		c.MessagesPath = d.MessagesPath
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.ReconnectDelays == nil {
		c.ReconnectDelays = d.ReconnectDelays
	}
	return c
}
