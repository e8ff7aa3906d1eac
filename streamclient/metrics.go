package streamclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the stream client.
type Metrics struct {
	connectAttempts    prometheus.Counter
	reconnects         prometheus.Counter
	messagesDispatched prometheus.Counter
	requestsSent       *prometheus.CounterVec
	connectionState    prometheus.Gauge
}

// NewMetrics creates the client metrics and registers them with reg.
// A nil registerer yields unregistered (but usable) collectors, which is
// convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfacestream",
			Subsystem: "client",
			Name:      "connect_attempts_total",
			Help:      "Total stream connection attempts, including reconnects",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfacestream",
			Subsystem: "client",
			Name:      "reconnects_total",
			Help:      "Total stream drops that triggered a reconnect",
		}),
		messagesDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfacestream",
			Subsystem: "client",
			Name:      "messages_dispatched_total",
			Help:      "Total inbound messages fed to the dispatcher",
		}),
		requestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfacestream",
			Subsystem: "client",
			Name:      "requests_sent_total",
			Help:      "Outbound action and error-report requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surfacestream",
			Subsystem: "client",
			Name:      "connection_state",
			Help:      "Current connection state (0=disconnected 1=connecting 2=connected 3=reconnecting)",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.connectAttempts,
			m.reconnects,
			m.messagesDispatched,
			m.requestsSent,
			m.connectionState,
		)
	}

	return m
}

func (m *Metrics) observeState(state ConnectionState) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(state))
}

func (m *Metrics) incConnectAttempts() {
	if m == nil {
		return
	}
	m.connectAttempts.Inc()
}

func (m *Metrics) incReconnects() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) incMessages() {
	if m == nil {
		return
	}
	m.messagesDispatched.Inc()
}

func (m *Metrics) incRequest(kind, outcome string) {
	if m == nil {
		return
	}
	m.requestsSent.WithLabelValues(kind, outcome).Inc()
}
