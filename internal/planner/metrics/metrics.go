package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GenerateDuration      prometheus.Histogram
	EntriesPlannedTotal   *prometheus.CounterVec // by priority
	EntriesCompletedTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		GenerateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxtrack_planner_generate_duration_seconds",
			Help:    "Duration of planner generation per subject",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		EntriesPlannedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_planner_entries_planned_total",
			Help: "Planner entries created, by priority",
		}, []string{"priority"}),
		EntriesCompletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_planner_entries_completed_total",
			Help: "Planner entries marked completed",
		}),
	}
}

func (m *Metrics) ObserveGenerate(seconds float64, byPriority map[string]int) {
	if m == nil {
		return
	}
	m.GenerateDuration.Observe(seconds)
	for priority, n := range byPriority {
		m.EntriesPlannedTotal.WithLabelValues(priority).Add(float64(n))
	}
}

func (m *Metrics) IncCompleted() {
	if m == nil {
		return
	}
	m.EntriesCompletedTotal.Inc()
}
