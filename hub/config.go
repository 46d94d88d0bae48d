package hub

import "time"

// Config holds the push endpoint settings.
type Config struct {
	Path           string        `env:"HUB_PATH" envDefault:"/hubs/messages"`
	SendBuffer     int           `env:"HUB_SEND_BUFFER" envDefault:"256"`
	PingInterval   time.Duration `env:"HUB_PING_INTERVAL" envDefault:"15s"`
	PongWait       time.Duration `env:"HUB_PONG_WAIT" envDefault:"30s"`
	WriteWait      time.Duration `env:"HUB_WRITE_WAIT" envDefault:"10s"`
	MaxMessageSize int64         `env:"HUB_MAX_MESSAGE_SIZE" envDefault:"65536"`
}

// DefaultConfig returns the defaults used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		Path:           "/hubs/messages",
		SendBuffer:     256,
		PingInterval:   15 * time.Second,
		PongWait:       30 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 64 << 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongWait <= c.PingInterval {
		c.PongWait = 2 * c.PingInterval
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	return c
}
