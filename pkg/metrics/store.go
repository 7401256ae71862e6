package metrics

import "github.com/marmos91/dittolog/pkg/store"

// newPrometheusStoreMetrics is set by pkg/metrics/prometheus at init time;
// the indirection keeps this package free of an import cycle.
var newPrometheusStoreMetrics func() store.Metrics

// RegisterStoreMetricsConstructor registers the Prometheus store metrics
// constructor.
func RegisterStoreMetricsConstructor(constructor func() store.Metrics) {
	newPrometheusStoreMetrics = constructor
}

// NewStoreMetrics returns Prometheus-backed store metrics, or nil when
// metrics are disabled or no implementation is linked in. A nil result can
// be passed straight to store.WithMetrics.
//
//	metrics.InitRegistry()
//	s, err := store.Create(capacity, dir, name, flags, store.WithMetrics(metrics.NewStoreMetrics()))
func NewStoreMetrics() store.Metrics {
	if !IsEnabled() || newPrometheusStoreMetrics == nil {
		return nil
	}
	return newPrometheusStoreMetrics()
}
