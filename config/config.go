// Package config loads and validates application configuration from JSON or
// YAML files, with environment variable overrides under the SURFACESTREAM_
// prefix. Environment values win over file values; file values win over
// defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/surfacestream/errors"
	"github.com/c360/surfacestream/pkg/backoff"
)

// Transport mode constants
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SURFACESTREAM"

// Config represents the complete application configuration.
type Config struct {
	// Endpoint is the agent's stream URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Transport selects the connection mode: "http" or "websocket".
	Transport string `json:"transport" yaml:"transport"`
	// Headers are attached to every outbound request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	Backoff BackoffConfig `json:"backoff" yaml:"backoff"`
	Log     LogConfig     `json:"log" yaml:"log"`

	// MetricsAddr, when non-empty, serves Prometheus metrics on this address.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`

	// RequestTimeoutSeconds bounds outbound action and error-report requests.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// BackoffConfig shapes the reconnect delay schedule.
type BackoffConfig struct {
	BaseDelayMillis int     `json:"base_delay_millis" yaml:"base_delay_millis"`
	MaxDelayMillis  int     `json:"max_delay_millis" yaml:"max_delay_millis"`
	JitterFraction  float64 `json:"jitter_fraction" yaml:"jitter_fraction"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	return &Config{
		Transport: TransportHTTP,
		Backoff: BackoffConfig{
			BaseDelayMillis: 1000,
			MaxDelayMillis:  30000,
			JitterFraction:  0.2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RequestTimeoutSeconds: 30,
	}
}

// Load reads configuration from path, merging over defaults and applying
// environment overrides. Both JSON and YAML files are accepted. An empty
// path loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "Config", "Load", "read config file")
		}

		// YAML is a JSON superset, so one parser covers both formats.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load", "parse config file")
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if val := os.Getenv(EnvPrefix + "_ENDPOINT"); val != "" {
		c.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "_TRANSPORT"); val != "" {
		c.Transport = val
	}
	if val := os.Getenv(EnvPrefix + "_METRICS_ADDR"); val != "" {
		c.MetricsAddr = val
	}
	if val := os.Getenv(EnvPrefix + "_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv(EnvPrefix + "_LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv(EnvPrefix + "_BACKOFF_BASE_MILLIS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Backoff.BaseDelayMillis = n
		}
	}
	if val := os.Getenv(EnvPrefix + "_BACKOFF_MAX_MILLIS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Backoff.MaxDelayMillis = n
		}
	}
	if val := os.Getenv(EnvPrefix + "_REQUEST_TIMEOUT_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSeconds = n
		}
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "endpoint validation")
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.WrapInvalid(
			stderrors.New("endpoint must be an absolute URL"),
			"Config", "Validate", "endpoint validation")
	}

	switch c.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown transport %q", c.Transport),
			"Config", "Validate", "transport validation")
	}

	if c.Backoff.BaseDelayMillis <= 0 {
		return errors.WrapInvalid(
			stderrors.New("backoff.base_delay_millis must be positive"),
			"Config", "Validate", "backoff validation")
	}
	if c.Backoff.MaxDelayMillis < c.Backoff.BaseDelayMillis {
		return errors.WrapInvalid(
			stderrors.New("backoff.max_delay_millis must be at least base_delay_millis"),
			"Config", "Validate", "backoff validation")
	}
	if c.Backoff.JitterFraction < 0 || c.Backoff.JitterFraction >= 1 {
		return errors.WrapInvalid(
			stderrors.New("backoff.jitter_fraction must be in [0, 1)"),
			"Config", "Validate", "backoff validation")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log level %q", c.Log.Level),
			"Config", "Validate", "log validation")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log format %q", c.Log.Format),
			"Config", "Validate", "log validation")
	}

	if c.RequestTimeoutSeconds <= 0 {
		return errors.WrapInvalid(
			stderrors.New("request_timeout_seconds must be positive"),
			"Config", "Validate", "timeout validation")
	}

	return nil
}

// BackoffPolicy converts the backoff section into a schedule for the client.
func (c *Config) BackoffPolicy() backoff.Policy {
	policy := backoff.Default()
	policy.Base = time.Duration(c.Backoff.BaseDelayMillis) * time.Millisecond
	policy.Max = time.Duration(c.Backoff.MaxDelayMillis) * time.Millisecond
	policy.JitterFraction = c.Backoff.JitterFraction
	return policy
}

// RequestTimeout returns the outbound request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
