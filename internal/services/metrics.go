package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the engine
type Metrics struct {
	// Memory engine metrics
	MemoryIngests *prometheus.CounterVec
	MemoryPruned  prometheus.Counter
	MemoryRecords prometheus.Gauge

	// Execution feed metrics
	FeedBuilds       prometheus.Counter
	FeedBuildLatency prometheus.Histogram
	FeedGateBlocked  prometheus.Counter

	// Write-behind persistence metrics
	SnapshotSaves *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		// Ingest outcomes: created, updated, skipped (counter - only goes up)
		MemoryIngests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "journeyatlas_memory_ingests_total",
			Help: "Total number of memory ingest events by outcome",
		}, []string{"outcome"}),

		MemoryPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journeyatlas_memory_pruned_total",
			Help: "Total number of expired or overflow memory records removed",
		}),

		MemoryRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "journeyatlas_memory_records",
			Help: "Current number of memory records held in the engine",
		}),

		FeedBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journeyatlas_feed_builds_total",
			Help: "Total number of execution feeds composed",
		}),

		FeedBuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyatlas_feed_build_duration_seconds",
			Help:    "Execution feed composition latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		FeedGateBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journeyatlas_feed_gate_blocked_total",
			Help: "Total number of feed requests blocked by the survey gate",
		}),

		SnapshotSaves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "journeyatlas_snapshot_saves_total",
			Help: "Total number of write-behind snapshot saves by outcome",
		}, []string{"outcome"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordIngest records a memory ingest outcome. Safe on a nil receiver so
// tests can run without registering collectors.
func (m *Metrics) RecordIngest(outcome string) {
	if m == nil {
		return
	}
	m.MemoryIngests.WithLabelValues(outcome).Inc()
}

// RecordPruned records removed memory records
func (m *Metrics) RecordPruned(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.MemoryPruned.Add(float64(count))
}

// SetMemoryRecords updates the resident record gauge
func (m *Metrics) SetMemoryRecords(count int) {
	if m == nil {
		return
	}
	m.MemoryRecords.Set(float64(count))
}

// RecordFeedBuild records one composed feed and its latency
func (m *Metrics) RecordFeedBuild(seconds float64) {
	if m == nil {
		return
	}
	m.FeedBuilds.Inc()
	m.FeedBuildLatency.Observe(seconds)
}

// RecordFeedGateBlocked records a feed request stopped by the survey gate
func (m *Metrics) RecordFeedGateBlocked() {
	if m == nil {
		return
	}
	m.FeedGateBlocked.Inc()
}

// RecordSnapshotSave records a write-behind save outcome
func (m *Metrics) RecordSnapshotSave(outcome string) {
	if m == nil {
		return
	}
	m.SnapshotSaves.WithLabelValues(outcome).Inc()
}
