// Package metrics exposes Prometheus instrumentation for the refresh
// pipeline and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection
type Collector struct {
	registry *prometheus.Registry

	// Refresh pipeline
	RefreshCyclesTotal   *prometheus.CounterVec
	RefreshDuration      prometheus.Histogram
	FetchFailuresTotal   *prometheus.CounterVec
	StaleRecordsTotal    *prometheus.CounterVec
	LastRefreshTimestamp prometheus.Gauge
	SnapshotSequence     prometheus.Gauge

	// Banner
	BannerReloadsTotal *prometheus.CounterVec

	// API
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector on its own registry so tests and
// multiple instances never collide on the default one.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RefreshCyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_cycles_total",
				Help:      "Refresh cycles by outcome (complete, partial, failed, superseded, skipped)",
			},
			[]string{"outcome"},
		),

		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Duration of a full refresh cycle in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		FetchFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_failures_total",
				Help:      "Upstream fetch failures by source and kind",
			},
			[]string{"source", "kind"},
		),

		StaleRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_records_total",
				Help:      "Sub-records carried over from a previous snapshot, by source",
			},
			[]string{"source"},
		),

		LastRefreshTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_refresh_timestamp_seconds",
				Help:      "Unix time of the last installed snapshot",
			},
		),

		SnapshotSequence: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_sequence",
				Help:      "Sequence number of the installed snapshot",
			},
		),

		BannerReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "banner_reloads_total",
				Help:      "Alert banner reload attempts by result",
			},
			[]string{"result"},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
			},
			[]string{"route"},
		),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordRefresh counts a finished cycle and its duration.
func (c *Collector) RecordRefresh(outcome string, duration time.Duration) {
	c.RefreshCyclesTotal.WithLabelValues(outcome).Inc()
	c.RefreshDuration.Observe(duration.Seconds())
}

// RecordSkippedRefresh counts a tick dropped because a cycle was in flight.
func (c *Collector) RecordSkippedRefresh() {
	c.RefreshCyclesTotal.WithLabelValues("skipped").Inc()
}

// RecordFetchFailure increments the fetch failure counter
func (c *Collector) RecordFetchFailure(source, kind string) {
	c.FetchFailuresTotal.WithLabelValues(source, kind).Inc()
}

// RecordStale increments the stale carry-over counter
func (c *Collector) RecordStale(source string) {
	c.StaleRecordsTotal.WithLabelValues(source).Inc()
}

// RecordInstall publishes the sequence and time of a newly installed snapshot.
func (c *Collector) RecordInstall(seq uint64, at time.Time) {
	c.SnapshotSequence.Set(float64(seq))
	c.LastRefreshTimestamp.Set(float64(at.Unix()))
}

// RecordBannerReload counts a banner reload attempt
func (c *Collector) RecordBannerReload(result string) {
	c.BannerReloadsTotal.WithLabelValues(result).Inc()
}

// RecordAPIRequest counts one request and observes its duration.
func (c *Collector) RecordAPIRequest(route, method, status string, duration time.Duration) {
	c.APIRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
