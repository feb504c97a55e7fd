// Package metrics exposes Prometheus instrumentation for the command
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bridge's instrument set over its own registry.
type Metrics struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	denials  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates the instrument set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rcb",
			Name:      "commands_total",
			Help:      "Command requests by command name and outcome code.",
		}, []string{"command", "code"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rcb",
			Name:      "rate_limit_denials_total",
			Help:      "Admission denials by category.",
		}, []string{"category"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rcb",
			Name:      "command_duration_seconds",
			Help:      "End-to-end command handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	m.registry.MustRegister(
		m.commands,
		m.denials,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCommand records one terminal command outcome.
func (m *Metrics) ObserveCommand(commandName, code string, latency time.Duration) {
	m.commands.WithLabelValues(commandName, code).Inc()
	m.latency.WithLabelValues(commandName).Observe(latency.Seconds())
}

// ObserveDenial records one admission denial.
func (m *Metrics) ObserveDenial(category string) {
	m.denials.WithLabelValues(category).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
