// Package metric provides Prometheus metrics for StackKV.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Metric registry, recording helpers and HTTP handler
//   - collector.go: Scrape-time collector reading store statistics
//
// Metrics include:
//
//   - Command counters and latency histograms per verb
//   - Active connection and open transaction gauges
//   - Compensating rollback counter
//   - Global key count
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
