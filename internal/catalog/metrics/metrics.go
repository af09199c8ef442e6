// Package metrics provides Prometheus metrics for the catalog cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks catalog cache effectiveness and Redis health.
type Metrics struct {
	CacheHitsTotal          prometheus.Counter
	CacheMissesTotal        prometheus.Counter
	CacheErrorsTotal        *prometheus.CounterVec // by operation (get, set, invalidate)
	CacheInvalidationsTotal prometheus.Counter
	CircuitOpen             prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_catalog_cache_hits_total",
			Help: "Total number of catalog listings served from Redis",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_catalog_cache_misses_total",
			Help: "Total number of catalog listings loaded from the primary store",
		}),
		CacheErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_catalog_cache_errors_total",
			Help: "Total number of Redis failures by cache operation",
		}, []string{"operation"}),
		CacheInvalidationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_catalog_cache_invalidations_total",
			Help: "Total number of catalog cache invalidations",
		}),
		CircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vaxtrack_catalog_cache_circuit_open",
			Help: "1 when the catalog cache circuit breaker is open",
		}),
	}
}

func (m *Metrics) RecordHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordError(operation string) {
	if m == nil {
		return
	}
	m.CacheErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordInvalidation() {
	if m == nil {
		return
	}
	m.CacheInvalidationsTotal.Inc()
}

// SetCircuitOpen mirrors the breaker state into the gauge.
func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
