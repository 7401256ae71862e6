// Package prometheus implements store.Metrics on the shared registry.
// Importing it for side effects enables metrics.NewStoreMetrics.
package prometheus

import (
	"time"

	"github.com/marmos91/dittolog/pkg/metrics"
	"github.com/marmos91/dittolog/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterStoreMetricsConstructor(NewStoreMetrics)
}

type storeMetrics struct {
	writes           prometheus.Counter
	writeDuration    prometheus.Histogram
	writeBytes       prometheus.Histogram
	syncs            prometheus.Counter
	syncDuration     prometheus.Histogram
	syncBytes        prometheus.Counter
	writeCursor      prometheus.Gauge
	syncCursor       prometheus.Gauge
	capacity         prometheus.Gauge
	capacityExceeded prometheus.Counter
}

// NewStoreMetrics creates Prometheus-backed store metrics, or nil when the
// registry is not initialized. Call it once per registry: the collectors
// are registered with promauto and a second call panics on duplicates.
func NewStoreMetrics() store.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	f := promauto.With(metrics.GetRegistry())

	return &storeMetrics{
		writes: f.NewCounter(prometheus.CounterOpts{
			Name: "dittolog_store_writes_total",
			Help: "Total number of records appended",
		}),
		writeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name: "dittolog_store_write_duration_milliseconds",
			Help: "Duration of record appends in milliseconds",
			Buckets: []float64{
				0.001, // 1us - small copies into the mapping
				0.01,
				0.1,
				1,
				10, // page faults on a cold mapping
			},
		}),
		writeBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dittolog_store_write_bytes",
			Help:    "Distribution of record payload sizes",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8), // 16B .. 256KiB
		}),
		syncs: f.NewCounter(prometheus.CounterOpts{
			Name: "dittolog_store_syncs_total",
			Help: "Total number of syncs that flushed data",
		}),
		syncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name: "dittolog_store_sync_duration_milliseconds",
			Help: "Duration of msync calls in milliseconds",
			Buckets: []float64{
				0.1,
				1,
				5,
				10,
				50,
				100,
				500,
				1000,
			},
		}),
		syncBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "dittolog_store_synced_bytes_total",
			Help: "Total bytes made durable by sync",
		}),
		writeCursor: f.NewGauge(prometheus.GaugeOpts{
			Name: "dittolog_store_write_cursor_bytes",
			Help: "Offset of the next write",
		}),
		syncCursor: f.NewGauge(prometheus.GaugeOpts{
			Name: "dittolog_store_sync_cursor_bytes",
			Help: "Offset up to which data is durable",
		}),
		capacity: f.NewGauge(prometheus.GaugeOpts{
			Name: "dittolog_store_capacity_bytes",
			Help: "Fixed capacity of the store file",
		}),
		capacityExceeded: f.NewCounter(prometheus.CounterOpts{
			Name: "dittolog_store_capacity_exceeded_total",
			Help: "Writes rejected because the record did not fit",
		}),
	}
}

func (m *storeMetrics) ObserveWrite(bytes int, duration time.Duration) {
	m.writes.Inc()
	m.writeBytes.Observe(float64(bytes))
	m.writeDuration.Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *storeMetrics) ObserveSync(bytes uint64, duration time.Duration) {
	m.syncs.Inc()
	m.syncBytes.Add(float64(bytes))
	m.syncDuration.Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *storeMetrics) RecordCursors(write, sync, capacity uint64) {
	m.writeCursor.Set(float64(write))
	m.syncCursor.Set(float64(sync))
	m.capacity.Set(float64(capacity))
}

func (m *storeMetrics) RecordCapacityExceeded() {
	m.capacityExceeded.Inc()
}
