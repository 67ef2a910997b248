package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/loglens/pkg/literal"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
grammar: python
preprocess:
  join_continuations: false
  dedup: true
reconcile:
  enabled: true
  sentinel: "==="
server:
  addr: "127.0.0.1:9090"
  title: "build logs"
  watch: true
logging:
  level: debug
  format: json
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Profile() != literal.Python {
		t.Errorf("Profile() = %v, want python", cfg.Profile().Name)
	}
	if cfg.Preprocess.JoinContinuations {
		t.Error("JoinContinuations = true, want false")
	}
	if !cfg.Preprocess.Dedup {
		t.Error("Dedup = false, want true")
	}
	if !cfg.Reconcile.Enabled || cfg.Reconcile.Sentinel != "===" {
		t.Errorf("Reconcile = %+v, want enabled with sentinel ===", cfg.Reconcile)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9090")
	}
	if cfg.Server.Title != "build logs" || !cfg.Server.Watch {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Grammar != DefaultGrammar {
		t.Errorf("Grammar = %q, want %q", cfg.Grammar, DefaultGrammar)
	}
	if cfg.Profile() != literal.Extended {
		t.Errorf("Profile() = %v, want extended", cfg.Profile().Name)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTempFile(t, "partial.yaml", "reconcile:\n  enabled: true\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Reconcile.Sentinel != "---" {
		t.Errorf("Sentinel = %q, want ---", cfg.Reconcile.Sentinel)
	}
	if !cfg.Preprocess.Dedup || !cfg.Preprocess.JoinContinuations {
		t.Errorf("Preprocess = %+v, want both enabled", cfg.Preprocess)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvGrammar, "python")
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvLogLevel, "warn")

	path := writeTempFile(t, "config.yaml", "grammar: extended\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Grammar != "python" {
		t.Errorf("Grammar = %q, want python", cfg.Grammar)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown grammar", func(c *Config) { c.Grammar = "ruby" }},
		{"blank sentinel", func(c *Config) { c.Reconcile = ReconcileConfig{Enabled: true, Sentinel: "  "} }},
		{"addr without port", func(c *Config) { c.Server.Addr = "localhost" }},
		{"addr with empty port", func(c *Config) { c.Server.Addr = "localhost:" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
		{"webhook missing url", func(c *Config) { c.Webhooks = []WebhookConfig{{Name: "no-url"}} }},
		{"webhook bad scheme", func(c *Config) { c.Webhooks = []WebhookConfig{{URL: "ftp://example.com/x"}} }},
		{"webhook no host", func(c *Config) { c.Webhooks = []WebhookConfig{{URL: "https:///x"}} }},
		{"webhook bad trigger", func(c *Config) {
			c.Webhooks = []WebhookConfig{{URL: "https://example.com", Trigger: "sometimes"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Server.Title != DefaultTitle {
		t.Errorf("Server = %+v, want defaults", cfg.Server)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v, want defaults", cfg.Logging)
	}
	if cfg.Profile() != literal.Extended {
		t.Errorf("Profile() = %v, want extended", cfg.Profile().Name)
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "http://localhost:8080/webhook"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerAlways {
		t.Errorf("Trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerAlways)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_AllTriggers(t *testing.T) {
	for _, trigger := range []WebhookTrigger{WebhookTriggerAlways, WebhookTriggerOnRaw, WebhookTriggerNever} {
		cfg := DefaultConfig()
		cfg.Webhooks = []WebhookConfig{{URL: "https://example.com/webhook", Trigger: trigger}}
		if err := Validate(cfg); err != nil {
			t.Errorf("Validate() with trigger %q error = %v", trigger, err)
		}
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	t.Setenv("LOGLENS_TEST_TOKEN", "abc123")

	content := `
webhooks:
  - name: ci
    url: "https://example.com/webhook"
    token: ${LOGLENS_TEST_TOKEN}
    trigger: on_raw
    timeout: 30s
  - url: "https://backup.example.com/webhook"
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Token != "abc123" {
		t.Errorf("Webhook[0].Token = %q, want abc123", cfg.Webhooks[0].Token)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnRaw {
		t.Errorf("Webhook[0].Trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnRaw)
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Webhook[0].Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[1].Trigger != WebhookTriggerAlways {
		t.Errorf("Webhook[1].Trigger = %v, want %v", cfg.Webhooks[1].Trigger, WebhookTriggerAlways)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
