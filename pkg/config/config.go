package config

import "time"

// Config holds all runtime configuration
type Config struct {
	// Registry settings
	APIURL         string
	RequestTimeout time.Duration
	RetryAttempts  int
	RateLimit      int

	// Execution settings
	Concurrency int

	// Silence defaults
	Creator string

	// Resolution settings
	Strict bool

	// Output settings
	Format string

	// Operational flags
	Verbose bool
	DryRun  bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		RetryAttempts:  4,
		RateLimit:      10,
		Concurrency:    5,
		Format:         "text",
		Strict:         false,
		Verbose:        false,
		DryRun:         false,
	}
}
