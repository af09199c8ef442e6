package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Version is reported through the build info gauge.
var Version = "dev"

// Metrics holds process-wide Prometheus metrics that do not belong to a
// single module: build info, database pool usage, and event publishing.
type Metrics struct {
	BuildInfo          *prometheus.GaugeVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBWaitCount        prometheus.Gauge
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors *prometheus.CounterVec
}

// New creates and registers the platform metrics.
func New() *Metrics {
	m := &Metrics{
		BuildInfo: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vaxtrack_build_info",
			Help: "Build information, value is always 1",
		}, []string{"version", "environment"}),
		DBOpenConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vaxtrack_db_open_connections",
			Help: "Number of established database connections",
		}),
		DBInUseConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vaxtrack_db_in_use_connections",
			Help: "Number of database connections currently in use",
		}),
		DBWaitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vaxtrack_db_wait_count",
			Help: "Total number of connections waited for",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_events_published_total",
			Help: "Domain events handed to the event publisher, labeled by type",
		}, []string{"event_type"}),
		EventPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_event_publish_errors_total",
			Help: "Domain events that failed to encode or enqueue, labeled by type",
		}, []string{"event_type"}),
	}
	return m
}

// SetBuildInfo records the running version and environment.
func (m *Metrics) SetBuildInfo(environment string) {
	if m == nil {
		return
	}
	m.BuildInfo.WithLabelValues(Version, environment).Set(1)
}

// RecordDBStats copies pool statistics into gauges.
func (m *Metrics) RecordDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(stats.OpenConnections))
	m.DBInUseConnections.Set(float64(stats.InUse))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}

func (m *Metrics) IncEventPublished(eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncEventPublishError(eventType string) {
	if m == nil {
		return
	}
	m.EventPublishErrors.WithLabelValues(eventType).Inc()
}
