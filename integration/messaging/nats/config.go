package nats

import "time"

// Config holds the NATS connection settings.
type Config struct {
	URL            string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	Name           string        `env:"NATS_CLIENT_NAME" envDefault:"relay"`
	Subject        string        `env:"NATS_SUBJECT" envDefault:"relay.messages"`
	ConnectTimeout time.Duration `env:"NATS_CONNECT_TIMEOUT" envDefault:"5s"`
	RetryAttempts  int           `env:"NATS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"NATS_RETRY_INTERVAL" envDefault:"2s"`
	// MaxReconnects bounds reconnects after the first connect. Negative retries forever.
	MaxReconnects int           `env:"NATS_MAX_RECONNECTS" envDefault:"-1"`
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
}
