package perf

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes used as metric labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics exports timing samples and command counts to Prometheus.
type Metrics struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	commands *prometheus.CounterVec
}

// NewMetrics registers the tracker's collectors on a fresh registry.
// POST: Returns metrics ready to be served by Handler
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tracker",
			Name:      "duration_seconds",
			Help:      "Duration of HTTP requests, slot queries and tracker commands.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracker",
			Name:      "commands_total",
			Help:      "Tracker commands dispatched, by command and outcome.",
		}, []string{"command", "outcome"}),
	}
	reg.MustRegister(m.duration, m.commands)
	return m
}

// CountCommand increments the counter for a dispatched command.
func (m *Metrics) CountCommand(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(e Entry) {
	m.duration.WithLabelValues(e.Kind.String()).Observe(e.DurationMs / 1000)
}
