package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/surfacestream/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"endpoint": "https://agent.example.com/stream",
		"transport": "http",
		"backoff": {"base_delay_millis": 500, "max_delay_millis": 10000, "jitter_fraction": 0.1},
		"log": {"level": "debug", "format": "json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://agent.example.com/stream", cfg.Endpoint)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 500, cfg.Backoff.BaseDelayMillis)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset fields keep defaults.
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
endpoint: wss://agent.example.com/stream
transport: websocket
headers:
  Authorization: Bearer token123
backoff:
  base_delay_millis: 250
  max_delay_millis: 5000
  jitter_fraction: 0.2
log:
  level: warn
  format: text
metrics_addr: ":9102"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.Equal(t, "Bearer token123", cfg.Headers["Authorization"])
	assert.Equal(t, ":9102", cfg.MetricsAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffPolicy().Base)
	assert.Equal(t, 5*time.Second, cfg.BackoffPolicy().Max)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.json", `{"endpoint": "https://file.example.com/stream"}`)

	t.Setenv("SURFACESTREAM_ENDPOINT", "https://env.example.com/stream")
	t.Setenv("SURFACESTREAM_LOG_LEVEL", "error")
	t.Setenv("SURFACESTREAM_BACKOFF_BASE_MILLIS", "2000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/stream", cfg.Endpoint)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 2000, cfg.Backoff.BaseDelayMillis)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("SURFACESTREAM_ENDPOINT", "https://env-only.example.com/stream")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env-only.example.com/stream", cfg.Endpoint)
	assert.Equal(t, TransportHTTP, cfg.Transport)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Endpoint = "https://agent.example.com/stream"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing endpoint", mutate: func(c *Config) { c.Endpoint = "" }},
		{name: "relative endpoint", mutate: func(c *Config) { c.Endpoint = "/stream" }},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "carrier-pigeon" }},
		{name: "zero base delay", mutate: func(c *Config) { c.Backoff.BaseDelayMillis = 0 }},
		{name: "max below base", mutate: func(c *Config) { c.Backoff.MaxDelayMillis = 1 }},
		{name: "jitter out of range", mutate: func(c *Config) { c.Backoff.JitterFraction = 1.5 }},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeoutSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}

	assert.NoError(t, valid().Validate())
}
