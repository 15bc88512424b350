package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/tinyland-inc/sojourner-relay/pkg/channels"
)

type Config struct {
	Slack     SlackConfig     `json:"slack"`
	Sojourner SojournerConfig `json:"sojourner"`
	Registry  RegistryConfig  `json:"registry"`
	Gateway   GatewayConfig   `json:"gateway"`
}

type SlackConfig struct {
	BotToken     string `env:"SOJREL_SLACK_BOT_TOKEN"     json:"bot_token"`
	AppToken     string `env:"SOJREL_SLACK_APP_TOKEN"     json:"app_token"`
	UploadPolicy string `env:"SOJREL_SLACK_UPLOAD_POLICY" json:"upload_policy"`
	SuggestLimit int    `env:"SOJREL_SLACK_SUGGEST_LIMIT" json:"suggest_limit"`
}

type SojournerConfig struct {
	Endpoint  string `env:"SOJREL_SOJOURNER_ENDPOINT"   json:"endpoint"`
	Region    string `env:"SOJREL_SOJOURNER_REGION"     json:"region"`
	Bucket    string `env:"SOJREL_SOJOURNER_BUCKET"     json:"bucket"`
	AccessKey string `env:"SOJREL_SOJOURNER_ACCESS_KEY" json:"access_key"`
	SecretKey string `env:"SOJREL_SOJOURNER_SECRET_KEY" json:"secret_key"`
}

type RegistryConfig struct {
	Path           string `env:"SOJREL_REGISTRY_PATH"            json:"path"`
	FuzzyThreshold int    `env:"SOJREL_REGISTRY_FUZZY_THRESHOLD" json:"fuzzy_threshold"`
}

type GatewayConfig struct {
	Host string `env:"SOJREL_GATEWAY_HOST" json:"host"`
	Port int    `env:"SOJREL_GATEWAY_PORT" json:"port"`
}

func DefaultConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			UploadPolicy: channels.PolicyInteractive,
			SuggestLimit: 20,
		},
		Sojourner: SojournerConfig{
			Region: "us-east-1",
			Bucket: "sojourner",
		},
		Registry: RegistryConfig{
			Path:           "~/.sojourner-relay/clients.json",
			FuzzyThreshold: 60,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 18710,
		},
	}
}

// LoadConfig reads the config file at path, falls back to defaults when the
// file does not exist, then applies SOJREL_* environment overrides on top.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the fields the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return errors.New("slack bot_token is required")
	}
	if c.Slack.AppToken == "" {
		return errors.New("slack app_token is required")
	}
	switch c.Slack.UploadPolicy {
	case channels.PolicyInteractive, channels.PolicyAuto:
	default:
		return fmt.Errorf("unknown upload_policy %q", c.Slack.UploadPolicy)
	}
	if c.Sojourner.Bucket == "" {
		return errors.New("sojourner bucket is required")
	}
	if c.Sojourner.AccessKey == "" || c.Sojourner.SecretKey == "" {
		return errors.New("sojourner credentials are required")
	}
	return nil
}

func (c *Config) RegistryPath() string {
	return expandHome(c.Registry.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
