package config

import (
	"os"
	"time"

	"github.com/ccollicutt/loglens/pkg/reconcile"
)

// Default values for configuration.
const (
	DefaultGrammar        = "extended"
	DefaultAddr           = ":8080"
	DefaultTitle          = "loglens"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvGrammar  = "LOGLENS_GRAMMAR"
	EnvAddr     = "LOGLENS_ADDR"
	EnvLogLevel = "LOGLENS_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Grammar: DefaultGrammar,
		Preprocess: PreprocessConfig{
			JoinContinuations: true,
			Dedup:             true,
		},
		Reconcile: ReconcileConfig{
			Sentinel: reconcile.DefaultSentinel,
		},
		Server: ServerConfig{
			Addr:  DefaultAddr,
			Title: DefaultTitle,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if grammar := os.Getenv(EnvGrammar); grammar != "" {
		c.Grammar = grammar
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}
