// Package config loads CLI configuration from the XDG config dir and the
// environment. Only non-secret settings are kept here; tokens go to the
// token store.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"expensetracker/cli/internal/xdg"
)

// Deployment modes select the default backend address.
const (
	ModeLocal     = "local"
	ModeContainer = "container"
)

// Token store backends.
const (
	TokenStoreKeychain = "keychain"
	TokenStoreMemory   = "memory"
	TokenStoreRedis    = "redis"
)

const (
	localBaseURL     = "http://localhost:8080"
	containerBaseURL = "http://backend:8080"
)

// Config holds non-sensitive CLI settings.
// Sources, highest priority first: environment variables, config.yaml,
// env-default tags.
type Config struct {
	Mode       string           `yaml:"mode" env:"EXPENSETRACKER_MODE" env-default:"local"`
	BaseURL    string           `yaml:"base_url" env:"EXPENSETRACKER_API_URL"`
	Timeout    time.Duration    `yaml:"timeout" env:"EXPENSETRACKER_TIMEOUT" env-default:"10s"`
	LogLevel   string           `yaml:"log_level" env:"EXPENSETRACKER_LOG_LEVEL" env-default:"warn"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	Endpoints  Endpoints        `yaml:"endpoints"`
}

// TokenStoreConfig selects where the session tokens are persisted.
type TokenStoreConfig struct {
	Backend        string `yaml:"backend" env:"EXPENSETRACKER_TOKEN_STORE" env-default:"keychain"`
	RedisURL       string `yaml:"redis_url" env:"EXPENSETRACKER_REDIS_URL"`
	RedisPrefix    string `yaml:"redis_prefix" env:"EXPENSETRACKER_REDIS_PREFIX" env-default:"expensetracker:session"`
	FilePassphrase string `yaml:"-" env:"EXPENSETRACKER_FILE_PASSPHRASE"`
}

// Endpoints contains the backend REST paths.
type Endpoints struct {
	Login    string `yaml:"login" env:"EXPENSETRACKER_LOGIN_PATH" env-default:"/api/auth/login"`
	Register string `yaml:"register" env:"EXPENSETRACKER_REGISTER_PATH" env-default:"/api/auth/register"`
	Me       string `yaml:"me" env:"EXPENSETRACKER_ME_PATH" env-default:"/api/auth/me"`
	Refresh  string `yaml:"refresh" env:"EXPENSETRACKER_REFRESH_PATH" env-default:"/api/auth/refresh"`
}

// Path returns the location of config.yaml.
func Path() (string, error) {
	return xdg.ConfigFile("config.yaml")
}

// Load reads config.yaml when it exists and the environment otherwise.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

// LoadFile reads the given yaml file; a missing file falls back to the
// environment and defaults.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	default:
		return nil, statErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown modes and incomplete token store settings.
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeLocal, ModeContainer:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, ModeLocal, ModeContainer)
	}

	c.TokenStore.Backend = strings.ToLower(strings.TrimSpace(c.TokenStore.Backend))
	switch c.TokenStore.Backend {
	case TokenStoreKeychain, TokenStoreMemory:
	case TokenStoreRedis:
		if c.TokenStore.RedisURL == "" {
			return errors.New("token store redis requires EXPENSETRACKER_REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown token store %q", c.TokenStore.Backend)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// HTTPBaseURL returns the explicit base URL or the default for the mode.
func (c *Config) HTTPBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Mode == ModeContainer {
		return containerBaseURL
	}
	return localBaseURL
}
