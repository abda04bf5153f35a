package ratelimit

import "time"

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// PerMinute is the sustained request rate per client
	PerMinute int
	// Burst is the bucket capacity; defaults to PerMinute
	Burst           int
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused bucket is kept
	IdleTimeout time.Duration
	Exempt      []Route
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		PerMinute:       120,
		Burst:           20,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Exempt:          DefaultExempt(),
	}
}

// DefaultExempt lists the routes never limited.
func DefaultExempt() []Route {
	return []Route{
		{Method: "GET", Path: "/health"},
	}
}
