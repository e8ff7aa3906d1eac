package streamclient

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/c360/surfacestream/pkg/backoff"
)

// Option is a functional option for configuring the Client
type Option func(*Client)

// WithLogger sets a custom logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBackoffPolicy overrides the reconnect delay policy
func WithBackoffPolicy(policy backoff.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithMetrics attaches Prometheus metrics to the client
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithErrorReportLimit bounds how fast error reports are sent to the agent.
// Reports beyond the limit are logged and dropped. The default allows one
// report per second with a burst of five.
func WithErrorReportLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.errLimiter = rate.NewLimiter(limit, burst)
	}
}
