package metric

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/stackkv-go/internal/storage"
)

// StatsSource provides store statistics at scrape time.
type StatsSource interface {
	Stats(ctx context.Context) storage.Stats
}

// Collector exports store statistics as gauges on every scrape.
type Collector struct {
	src StatsSource

	globalKeys     *prometheus.Desc
	activeSessions *prometheus.Desc
	maxDepth       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a new store statistics collector.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		globalKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "global_keys"),
			"Number of keys in the committed global state.",
			nil, nil),
		activeSessions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions_in_transaction"),
			"Number of sessions with at least one open transaction.",
			nil, nil),
		maxDepth: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "transaction_max_depth"),
			"Deepest transaction nesting across sessions.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.globalKeys
	ch <- c.activeSessions
	ch <- c.maxDepth
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats(context.Background())
	ch <- prometheus.MustNewConstMetric(c.globalKeys, prometheus.GaugeValue, float64(s.GlobalKeys))
	ch <- prometheus.MustNewConstMetric(c.activeSessions, prometheus.GaugeValue, float64(s.ActiveSessions))
	ch <- prometheus.MustNewConstMetric(c.maxDepth, prometheus.GaugeValue, float64(s.MaxDepth))
}
