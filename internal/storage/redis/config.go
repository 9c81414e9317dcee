package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// EndedSessionTTL expires completed and abandoned sessions. Zero keeps them forever.
	// Active sessions and score history never expire.
	EndedSessionTTL time.Duration

	// MaxTxRetries bounds each optimistic WATCH transaction (high-score
	// append, game save, session end) before it gives up with a conflict error
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		EndedSessionTTL: 7 * 24 * time.Hour,
		MaxTxRetries:    10,
	}
}
