// Package service builds the planner: a prioritized list of the vaccinations
// a subject should act on within the look-ahead window.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	catalogmodels "vaxtrack/internal/catalog/models"
	"vaxtrack/internal/events"
	plannermetrics "vaxtrack/internal/planner/metrics"
	"vaxtrack/internal/planner/models"
	"vaxtrack/internal/platform/tracer"
	schedulemodels "vaxtrack/internal/schedule/models"
	subjectmodels "vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/requestcontext"
)

type Store interface {
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.Entry, error)
	FindByID(ctx context.Context, subjectID id.SubjectID, entryID id.PlannerEntryID) (*models.Entry, error)
	// ReplacePending deletes the subject's entries that are not completed and
	// inserts entries as one batch.
	ReplacePending(ctx context.Context, subjectID id.SubjectID, entries []*models.Entry) error
	// MarkCompleted returns sentinel.ErrInvalidState if the entry is already completed.
	MarkCompleted(ctx context.Context, entry *models.Entry) error
}

type SubjectProvider interface {
	Get(ctx context.Context, subjectID id.SubjectID) (*subjectmodels.Subject, error)
}

type CatalogProvider interface {
	List(ctx context.Context, filter catalogmodels.ListFilter) ([]*catalogmodels.Vaccine, error)
}

// DoseHistory exposes the subject's scheduled doses so vaccines finished
// through the schedule count as completed.
type DoseHistory interface {
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*schedulemodels.DoseInstance, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	store     Store
	subjects  SubjectProvider
	catalog   CatalogProvider
	history   DoseHistory
	tx        PlannerTx
	publisher EventPublisher
	metrics   *plannermetrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *plannermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTx(tx PlannerTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, subjects SubjectProvider, catalog CatalogProvider, history DoseHistory, opts ...Option) *Service {
	s := &Service{
		store:    store,
		subjects: subjects,
		catalog:  catalog,
		history:  history,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewInMemoryTx()
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type GenerateResult struct {
	Planned int
}

// Generate replaces the subject's pending planner entries with a fresh plan.
// Completed entries are kept and feed the completion history.
func (s *Service) Generate(ctx context.Context, subjectID id.SubjectID) (_ *GenerateResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanPlannerGenerate, tracer.String(tracer.AttrSubjectID, subjectID.String()))
	defer func() { span.End(err) }()

	if subjectID.IsNil() {
		return nil, dErrors.Invalid("subject_id", "is required")
	}

	var (
		subject  *subjectmodels.Subject
		vaccines []*catalogmodels.Vaccine
		doses    []*schedulemodels.DoseInstance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subject, err = s.resolveSubject(gctx, subjectID)
		return err
	})
	g.Go(func() error {
		var err error
		if vaccines, err = s.catalog.List(gctx, catalogmodels.ListFilter{ActiveOnly: true}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vaccine catalog")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if doses, err = s.history.ListBySubject(gctx, subjectID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dose history")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !subject.HasDateOfBirth() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject has no date of birth")
	}

	now := requestcontext.Now(ctx)
	var planned []*models.Entry
	err = s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		prior, err := s.store.ListBySubject(ctx, subjectID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load planner entries")
		}
		planned = planEntries(subject, vaccines, newHistory(prior, doses), now)
		if err := s.store.ReplacePending(ctx, subjectID, planned); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save planner entries")
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "planner generation failed",
			"subject_id", subjectID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	byPriority := make(map[string]int)
	for _, e := range planned {
		byPriority[string(e.Priority)]++
	}
	span.SetAttributes(tracer.Int(tracer.AttrPlanned, len(planned)))
	s.metrics.ObserveGenerate(time.Since(start).Seconds(), byPriority)
	s.logger.InfoContext(ctx, "planner generated",
		"subject_id", subjectID.String(),
		"planned", len(planned),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, subjectID, map[string]any{"planned": len(planned)})
	return &GenerateResult{Planned: len(planned)}, nil
}

// Get returns the subject's planner entries: overdue first, then upcoming,
// completed, and the rest, each by scheduled date.
func (s *Service) Get(ctx context.Context, subjectID id.SubjectID) ([]*models.Entry, error) {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list planner entries")
	}
	models.SortForDisplay(entries)
	return entries, nil
}

// Complete marks a planner entry done. Completed entries survive regeneration.
func (s *Service) Complete(ctx context.Context, subjectID id.SubjectID, entryID id.PlannerEntryID, req models.CompleteRequest) (*models.Entry, error) {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var completed *models.Entry
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		entry, err := s.store.FindByID(ctx, subjectID, entryID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "planner entry not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load planner entry")
		}
		if err := entry.Complete(req, now); err != nil {
			return err
		}
		if err := s.store.MarkCompleted(ctx, entry); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidState, "planner entry already completed")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete planner entry")
		}
		completed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCompleted()
	s.logger.InfoContext(ctx, "planner entry completed",
		"subject_id", subjectID.String(),
		"entry_id", entryID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return completed, nil
}

func (s *Service) resolveSubject(ctx context.Context, subjectID id.SubjectID) (*subjectmodels.Subject, error) {
	subject, err := s.subjects.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	if !subject.AccessibleBy(requestcontext.UserID(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	return subject, nil
}

func (s *Service) publish(ctx context.Context, subjectID id.SubjectID, data map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(ctx, events.TypePlannerGenerated, subjectID.String(), data)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish planner event",
			"subject_id", subjectID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
