// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Default configuration values.
const (
	defaultAddr         = ":8080"
	defaultLogLevel     = "info"
	defaultThreshold    = 0.75
	defaultMaxBodyBytes = 1 << 20 // 1 MiB request body cap
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RiskThreshold is the HIGH/LOW classification boundary. Read once
	// at process start and injected into the scorer and the
	// recommendation builder.
	RiskThreshold float64 `koanf:"risk_threshold"`

	// MaxBodyBytes caps the size of an inbound request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      defaultLogLevel,
		Addr:          defaultAddr,
		RiskThreshold: defaultThreshold,
		MaxBodyBytes:  defaultMaxBodyBytes,
	}
}
