// Package config defines the client configuration and its loading rules.
// An example config file config.yaml is provided in the repository.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends for the session material.
const (
	StoreFile   = "file"
	StoreValKey = "valkey"
	StoreMemory = "memory"
)

type Config struct {
	API       API       `yaml:"api"`
	Session   Session   `yaml:"session"`
	Refresher Refresher `yaml:"refresher"`
	Cache     Cache     `yaml:"cache"`
	Logger    Logger    `yaml:"logger"`
}

type API struct {
	BaseURL string `yaml:"baseURL" env:"DEVSHARE_API_URL" env-default:"http://localhost:5000"`

	// Timeout of zero disables the client-side deadline; a hung request
	// then blocks until its context is cancelled.
	Timeout time.Duration `yaml:"timeout" env:"DEVSHARE_API_TIMEOUT" env-default:"0"`
}

type Session struct {
	// Store selects the backend: file, valkey or memory.
	Store  string    `yaml:"store" env:"DEVSHARE_SESSION_STORE" env-default:"file"`
	File   FileStore `yaml:"file"`
	ValKey ValKey    `yaml:"valkey"`
}

type FileStore struct {
	// Path defaults to $HOME/.devshare/session.json when empty.
	Path string `yaml:"path" env:"DEVSHARE_SESSION_FILE"`
}

type ValKey struct {
	Host     string `yaml:"host" env:"DEVSHARE_VALKEY_HOST" env-default:"localhost:6379"`
	Username string `yaml:"username" env:"DEVSHARE_VALKEY_USERNAME"`
	Password string `yaml:"password" env:"DEVSHARE_VALKEY_PASSWORD"`
	Prefix   string `yaml:"prefix" env:"DEVSHARE_VALKEY_PREFIX"`
}

type Refresher struct {
	// Interval between proactive refresh checks.
	Interval time.Duration `yaml:"interval" env:"DEVSHARE_REFRESH_INTERVAL" env-default:"1m"`
	// Margin before expiry at which the access token is renewed.
	Margin time.Duration `yaml:"margin" env:"DEVSHARE_REFRESH_MARGIN" env-default:"5m"`
}

type Cache struct {
	// TTL of cached feed pages and profiles; zero disables caching.
	TTL time.Duration `yaml:"ttl" env:"DEVSHARE_CACHE_TTL" env-default:"30s"`
}

type Logger struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"DEVSHARE_LOG_LEVEL" env-default:"info"`
	// Format is text or json.
	Format string `yaml:"format" env:"DEVSHARE_LOG_FORMAT" env-default:"text"`
}

// SessionFilePath resolves the file-store path, defaulting into the user's
// home directory.
func (c *Config) SessionFilePath() (string, error) {
	if c.Session.File.Path != "" {
		return c.Session.File.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".devshare", "session.json"), nil
}

// Load reads the configuration. When path is empty the usual locations are
// searched (/etc/devshare, $HOME/.devshare, the working directory); with no
// file present the environment alone supplies the values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return cfg, validate(cfg)
	}

	for _, candidate := range searchPaths() {
		err := cleanenv.ReadConfig(candidate, cfg)
		if err == nil {
			return cfg, validate(cfg)
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return nil, fmt.Errorf("loading config %s: %w", candidate, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}
	return cfg, validate(cfg)
}

func searchPaths() []string {
	paths := []string{"/etc/devshare/config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".devshare", "config.yaml"))
	}
	return append(paths, "config.yaml")
}

func validate(cfg *Config) error {
	switch cfg.Session.Store {
	case StoreFile, StoreValKey, StoreMemory:
	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Logger.Level)
	}

	switch cfg.Logger.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logger.Format)
	}

	return nil
}
