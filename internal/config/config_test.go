package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  baseURL: https://devshare.example.com
  timeout: 15s
session:
  store: valkey
  valkey:
    host: valkey.internal:6379
    prefix: staging
refresher:
  interval: 30s
  margin: 2m
cache:
  ttl: 10s
logger:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://devshare.example.com", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, StoreValKey, cfg.Session.Store)
	assert.Equal(t, "valkey.internal:6379", cfg.Session.ValKey.Host)
	assert.Equal(t, "staging", cfg.Session.ValKey.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Refresher.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Refresher.Margin)
	assert.Equal(t, 10*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, StoreFile, cfg.Session.Store)
	assert.Equal(t, time.Minute, cfg.Refresher.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Refresher.Margin)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DEVSHARE_API_URL", "http://127.0.0.1:8080")
	t.Setenv("DEVSHARE_SESSION_STORE", "memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.API.BaseURL)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown store",
			env:  map[string]string{"DEVSHARE_SESSION_STORE": "postgres"},
		},
		{
			name: "unknown log level",
			env:  map[string]string{"DEVSHARE_LOG_LEVEL": "trace"},
		},
		{
			name: "unknown log format",
			env:  map[string]string{"DEVSHARE_LOG_FORMAT": "logfmt"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSessionFilePath(t *testing.T) {
	cfg := &Config{}
	cfg.Session.File.Path = "/tmp/custom.json"
	path, err := cfg.SessionFilePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.json", path)

	cfg.Session.File.Path = ""
	path, err = cfg.SessionFilePath()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join(".devshare", "session.json"))
}
