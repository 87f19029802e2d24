// Package config loads the tracker configuration: a YAML file with
// ${VAR} environment expansion, with a local env file (if present) loaded
// first so API keys and webhook URLs can stay out of the YAML.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config is the top-level tracker configuration.
type Config struct {
	StoragePath           string                `yaml:"storage_path"`
	LogPath               string                `yaml:"log_path"`
	ListenAddr            string                `yaml:"listen_addr"`
	CheckInterval         int                   `yaml:"check_interval"` // seconds between poll cycles
	Logging               LoggingConfig         `yaml:"logging"`
	Services              []ServiceConfig       `yaml:"services"`
	EnableDiscordWebhooks bool                  `yaml:"enable_discord_webhooks"`
	DiscordWebhookConfig  *DiscordWebhookConfig `yaml:"discord_webhook_config"`
}

// LoggingConfig controls the application log output and rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ServiceConfig identifies one tracked service.
type ServiceConfig struct {
	Service         string   `yaml:"service"`
	Key             string   `yaml:"key"`
	VisibilityLabel string   `yaml:"visibility_label"`
	Features        []string `yaml:"features"`
	Format          string   `yaml:"format"`
}

// DiscordWebhookConfig configures outbound Discord notifications.
type DiscordWebhookConfig struct {
	TrackerAPIURL     string             `yaml:"tracker_api_url"`
	TagMentionRoleIDs []TagMentionRoleID `yaml:"tag_mention_role_ids"`
	Services          []ServiceWebhook   `yaml:"services"`
}

// TagMentionRoleID maps a change tag to a Discord role to mention.
type TagMentionRoleID struct {
	Tag    string `yaml:"tag"`
	RoleID string `yaml:"role_id"`
}

// ServiceWebhook is the Discord destination for one service's changes.
type ServiceWebhook struct {
	Service    string `yaml:"service"`
	Name       string `yaml:"name"`
	WebhookURL string `yaml:"webhook_url"`
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and validates the configuration at path. A .env file in the
// working directory, when present, is loaded into the environment before
// ${VAR} references in the YAML are expanded.
func Load(path string) (*Config, error) {
	// Best effort: a missing env file is fine, secrets may come from the
	// real environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{
		ListenAddr:    ":3000",
		CheckInterval: 300,
		Logging: LoggingConfig{
			Level:      "info",
			File:       "logs/discovery.log",
			MaxSizeMB:  50,
			MaxBackups: 7,
		},
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	for i := range cfg.Services {
		if cfg.Services[i].Format == "" {
			cfg.Services[i].Format = "rest"
		}
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoragePath == "" {
		return fmt.Errorf("storage_path is required")
	}
	if c.LogPath == "" {
		return fmt.Errorf("log_path is required")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive")
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service is required")
	}
	for i, svc := range c.Services {
		if svc.Service == "" {
			return fmt.Errorf("service %d: service name is required", i)
		}
	}
	if c.EnableDiscordWebhooks && c.DiscordWebhookConfig == nil {
		return fmt.Errorf("discord_webhook_config is required when webhooks are enabled")
	}
	return nil
}

// expandEnvVars replaces ${VAR} references with environment values, keeping
// unresolved references as-is.
func expandEnvVars(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}
