// Package metric provides Prometheus metrics for StackKV.
//
// It exposes metrics in Prometheus format for monitoring
// command rates, latencies, connections and transaction depth.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stackkv"

// Registry holds all application metrics.
//
// All recording methods are safe on a nil *Registry, so components can
// run without metrics wired in.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	RateLimited       prometheus.Counter

	// Transaction metrics
	TransactionsOpen      prometheus.Gauge
	CompensatingRollbacks prometheus.Counter
	DisconnectRollbacks   prometheus.Counter
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// NewRegistry creates a new metrics registry with Go runtime and
// process collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of processed commands.",
			}, []string{"verb", "status"}),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command processing latency in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			}, []string{"verb"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of commands rejected by the rate limiter.",
		}),
		TransactionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transactions_open",
			Help:      "Number of open transaction levels across all sessions.",
		}),
		CompensatingRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensating_rollbacks_total",
			Help:      "Total number of transactions rolled back after a failed PUT or DELETE.",
		}),
		DisconnectRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnect_rollbacks_total",
			Help:      "Total number of transaction levels discarded on disconnect.",
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.RateLimited,
		r.TransactionsOpen,
		r.CompensatingRollbacks,
		r.DisconnectRollbacks,
	)

	return r
}

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// MustRegister registers additional collectors with this registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.registry.MustRegister(cs...)
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordCommand counts one processed command and observes its latency.
func (r *Registry) RecordCommand(verb, status string, seconds float64) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(verb, status).Inc()
	r.CommandDuration.WithLabelValues(verb).Observe(seconds)
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a closed connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// IncRateLimited records a rejected command.
func (r *Registry) IncRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

// TxOpened records a new transaction level.
func (r *Registry) TxOpened() {
	if r == nil {
		return
	}
	r.TransactionsOpen.Inc()
}

// TxClosed records n transaction levels leaving the open set.
func (r *Registry) TxClosed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.TransactionsOpen.Sub(float64(n))
}

// IncCompensatingRollback records an automatic rollback after a failed write.
func (r *Registry) IncCompensatingRollback() {
	if r == nil {
		return
	}
	r.CompensatingRollbacks.Inc()
}

// AddDisconnectRollbacks records levels discarded on disconnect.
func (r *Registry) AddDisconnectRollbacks(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.DisconnectRollbacks.Add(float64(n))
}
