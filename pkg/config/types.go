// Package config provides configuration loading and validation for loglens.
package config

import (
	"time"

	"github.com/ccollicutt/loglens/pkg/literal"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Grammar selects the literal grammar: extended or python.
	Grammar    string           `yaml:"grammar"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Webhooks   []WebhookConfig  `yaml:"webhooks,omitempty"`

	// profile is the resolved grammar (populated during validation).
	profile literal.Profile
}

// Profile returns the grammar selected by Grammar.
func (c *Config) Profile() literal.Profile {
	if c.profile.Name == "" {
		return literal.DefaultProfile
	}
	return c.profile
}

// PreprocessConfig controls line preprocessing before classification.
type PreprocessConfig struct {
	// JoinContinuations merges lines ending in a backslash with the next line.
	JoinContinuations bool `yaml:"join_continuations"`

	// Dedup collapses runs of identical lines into one annotated line.
	Dedup bool `yaml:"dedup"`
}

// ReconcileConfig controls fragment reconstruction.
type ReconcileConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sentinel is a section marker line that is skipped while reconciling.
	Sentinel string `yaml:"sentinel"`
}

// ServerConfig configures the HTTP viewer.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Title string `yaml:"title"`

	// Watch reloads the document when the file changes.
	Watch bool `yaml:"watch"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every dump (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerOnRaw fires only when some lines could not be decoded.
	WebhookTriggerOnRaw WebhookTrigger = "on_raw"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending dump reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "always".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
