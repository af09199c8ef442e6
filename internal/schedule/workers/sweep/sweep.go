// Package sweep periodically synchronizes dose statuses for every subject
// with pending doses, so statuses age even when nobody calls the API.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"vaxtrack/internal/platform/tracer"
	"vaxtrack/internal/schedule/metrics"
	"vaxtrack/internal/schedule/service"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/requestcontext"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 100
)

// Result contains the results of a sweep run.
type Result struct {
	Subjects int           // Subjects synchronized
	Updated  int           // Dose statuses changed
	Failed   int           // Subjects whose synchronization failed
	Duration time.Duration // Time taken for the run
}

type Synchronizer interface {
	PendingSubjects(ctx context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error)
	Synchronize(ctx context.Context, subjectID id.SubjectID) (*service.SyncResult, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(w *Worker) {
		if t != nil {
			w.tracer = t
		}
	}
}

type Worker struct {
	sync      Synchronizer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

func New(sync Synchronizer, opts ...Option) *Worker {
	w := &Worker{
		sync:      sync,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.Error("status_sweep_failed", "error", err)
				continue
			}
			w.logger.Info("status_sweep_completed",
				"subjects", res.Subjects,
				"updated", res.Updated,
				"failed", res.Failed,
				"duration_ms", res.Duration.Milliseconds(),
			)

		case <-ctx.Done():
			w.logger.Info("status sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce synchronizes every subject with pending doses against a single
// pinned time. A failing subject is logged and skipped; only a paging error
// aborts the run.
func (w *Worker) RunOnce(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	ctx, span := w.tracer.Start(ctx, tracer.SpanStatusSweep)
	defer func() {
		span.End(err)
		subjects := 0
		if res != nil {
			subjects = res.Subjects
		}
		w.metrics.ObserveSweep(time.Since(start).Seconds(), subjects, err)
	}()

	ctx = requestcontext.WithTime(ctx, time.Now())
	res = &Result{}
	var cursor id.SubjectID
	for {
		page, err := w.sync.PendingSubjects(ctx, cursor, w.batchSize)
		if err != nil {
			return nil, err
		}
		for _, subjectID := range page {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			synced, err := w.sync.Synchronize(ctx, subjectID)
			if err != nil {
				res.Failed++
				w.logger.WarnContext(ctx, "status sweep skipped subject",
					"subject_id", subjectID.String(),
					"error", err,
				)
				continue
			}
			res.Subjects++
			res.Updated += synced.Updated
		}
		if len(page) < w.batchSize {
			break
		}
		cursor = page[len(page)-1]
	}

	res.Duration = time.Since(start)
	span.SetAttributes(
		tracer.Int(tracer.AttrUpdated, res.Updated),
		tracer.Int(tracer.AttrSweepBatch, w.batchSize),
		tracer.Duration(tracer.AttrSweepElapsed, res.Duration),
	)
	return res, nil
}
