// Package metrics provides Prometheus metrics for schedule generation and
// status synchronization.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GenerateDuration       prometheus.Histogram
	DoseChangesTotal       *prometheus.CounterVec // by change (added, updated, removed)
	StatusTransitionsTotal *prometheus.CounterVec // by new status
	DosesCompletedTotal    prometheus.Counter
	SweepRunsTotal         *prometheus.CounterVec // by result (success, failure)
	SweepSubjectsTotal     prometheus.Counter
	SweepDurationSeconds   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		GenerateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxtrack_schedule_generate_duration_seconds",
			Help:    "Duration of schedule generation per subject",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DoseChangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_schedule_dose_changes_total",
			Help: "Dose instances added, rescheduled, or removed by schedule generation",
		}, []string{"change"}),
		StatusTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_schedule_status_transitions_total",
			Help: "Dose status changes persisted by the synchronizer, by new status",
		}, []string{"status"}),
		DosesCompletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_schedule_doses_completed_total",
			Help: "Dose instances marked completed",
		}),
		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtrack_schedule_sweep_runs_total",
			Help: "Status sweep runs by result",
		}, []string{"result"}),
		SweepSubjectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxtrack_schedule_sweep_subjects_total",
			Help: "Subjects synchronized by the status sweep",
		}),
		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxtrack_schedule_sweep_duration_seconds",
			Help:    "Duration of one status sweep run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveGenerate(seconds float64, added, updated, removed int) {
	if m == nil {
		return
	}
	m.GenerateDuration.Observe(seconds)
	m.DoseChangesTotal.WithLabelValues("added").Add(float64(added))
	m.DoseChangesTotal.WithLabelValues("updated").Add(float64(updated))
	m.DoseChangesTotal.WithLabelValues("removed").Add(float64(removed))
}

func (m *Metrics) IncStatusTransition(status string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncDoseCompleted() {
	if m == nil {
		return
	}
	m.DosesCompletedTotal.Inc()
}

func (m *Metrics) ObserveSweep(seconds float64, subjects int, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.SweepRunsTotal.WithLabelValues(result).Inc()
	m.SweepSubjectsTotal.Add(float64(subjects))
	m.SweepDurationSeconds.Observe(seconds)
}
