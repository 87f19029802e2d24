package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ddd/discovery-tracker/config"
)

const sampleConfig = `
storage_path: ./data/current
log_path: ./data/changes
check_interval: 600
services:
  - service: example.googleapis.com
    key: ${EXAMPLE_API_KEY}
  - service: other.googleapis.com
    format: rpc
    visibility_label: preview
enable_discord_webhooks: true
discord_webhook_config:
  tracker_api_url: https://tracker.example.com
  tag_mention_role_ids:
    - tag: new_method
      role_id: "1234"
  services:
    - service: example.googleapis.com
      name: Example API
      webhook_url: https://discord.com/api/webhooks/abc
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("EXAMPLE_API_KEY", "secret-key")

	cfg, err := config.Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CheckInterval != 600 {
		t.Errorf("check_interval: got %d", cfg.CheckInterval)
	}
	if cfg.ListenAddr != ":3000" {
		t.Errorf("listen_addr default: got %q", cfg.ListenAddr)
	}
	if len(cfg.Services) != 2 {
		t.Fatalf("services: got %d", len(cfg.Services))
	}
	if cfg.Services[0].Key != "secret-key" {
		t.Errorf("env expansion failed: got %q", cfg.Services[0].Key)
	}
	if cfg.Services[0].Format != "rest" {
		t.Errorf("format default: got %q", cfg.Services[0].Format)
	}
	if cfg.Services[1].Format != "rpc" {
		t.Errorf("explicit format lost: got %q", cfg.Services[1].Format)
	}
	if cfg.DiscordWebhookConfig == nil || cfg.DiscordWebhookConfig.TrackerAPIURL != "https://tracker.example.com" {
		t.Errorf("webhook config wrong: %+v", cfg.DiscordWebhookConfig)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.File == "" {
		t.Errorf("logging defaults wrong: %+v", cfg.Logging)
	}
}

func TestLoadRejectsMissingServices(t *testing.T) {
	path := writeConfig(t, "storage_path: a\nlog_path: b\ncheck_interval: 60\nservices: []\n")
	if _, err := config.Load(path); err == nil {
		t.Error("expected validation error for empty services")
	}
}

func TestLoadRejectsMissingPaths(t *testing.T) {
	path := writeConfig(t, "check_interval: 60\nservices:\n  - service: a.googleapis.com\n")
	if _, err := config.Load(path); err == nil {
		t.Error("expected validation error for missing storage_path")
	}
}

func TestLoadRejectsWebhooksWithoutConfig(t *testing.T) {
	path := writeConfig(t, `
storage_path: a
log_path: b
check_interval: 60
services:
  - service: a.googleapis.com
enable_discord_webhooks: true
`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected validation error for enabled webhooks without config")
	}
}
