package server

import "time"

// Defaults applied by New and DefaultConfig. Read and write timeouts bound plain
// requests only: upgraded push connections manage their own deadlines once hijacked.
const (
	DefaultAddr = ":8080"

	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second

	// DefaultShutdownTimeout also bounds the drain of in-flight broadcasts.
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxHeaderBytes = 1 << 20
)
