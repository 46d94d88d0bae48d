package ingress

import "time"

// Config holds the submission endpoint settings.
type Config struct {
	Path        string        `env:"INGRESS_PATH" envDefault:"/api/messages"`
	MaxBodySize int64         `env:"INGRESS_MAX_BODY_SIZE" envDefault:"65536"`
	DedupTTL    time.Duration `env:"INGRESS_DEDUP_TTL" envDefault:"5m"`
	DedupSize   int           `env:"INGRESS_DEDUP_SIZE" envDefault:"10000"`
	// RateLimit is the accepted submissions per second across all producers. Zero disables it.
	RateLimit float64 `env:"INGRESS_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"INGRESS_RATE_BURST" envDefault:"20"`
}

// DefaultConfig returns the defaults used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		Path:        "/api/messages",
		MaxBodySize: 64 << 10,
		DedupTTL:    5 * time.Minute,
		DedupSize:   10000,
		RateBurst:   20,
	}
}
