// Package service implements the schedule engine: generating dose instances
// from the catalog, keeping their statuses current, and recording
// completions and reminders.
package service

import (
	"context"
	"errors"
	"log/slog"

	catalogmodels "vaxtrack/internal/catalog/models"
	"vaxtrack/internal/events"
	"vaxtrack/internal/platform/tracer"
	schedulemetrics "vaxtrack/internal/schedule/metrics"
	"vaxtrack/internal/schedule/models"
	subjectmodels "vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/requestcontext"
)

type DoseStore interface {
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error)
	FindByID(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID) (*models.DoseInstance, error)
	InsertBatch(ctx context.Context, doses []*models.DoseInstance) error
	UpdateScheduledDates(ctx context.Context, changes []models.DateChange) (int, error)
	DeleteByIDs(ctx context.Context, doseIDs []id.DoseID) (int, error)
	ListPending(ctx context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error)
	// UpdateStatuses writes all changes in one batch and never modifies a
	// completed row. Returns the number of rows changed.
	UpdateStatuses(ctx context.Context, changes []models.StatusChange) (int, error)
	// MarkCompleted returns sentinel.ErrInvalidState if the dose is already completed.
	MarkCompleted(ctx context.Context, dose *models.DoseInstance) error
	ListSubjectsWithPending(ctx context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error)
}

type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	ListActiveReminders(ctx context.Context, subjectID id.SubjectID) ([]*models.Reminder, error)
	DeactivateReminder(ctx context.Context, subjectID id.SubjectID, reminderID id.ReminderID) error
}

// SubjectProvider resolves subjects and enforces that the caller may see them.
type SubjectProvider interface {
	Get(ctx context.Context, subjectID id.SubjectID) (*subjectmodels.Subject, error)
}

type CatalogProvider interface {
	List(ctx context.Context, filter catalogmodels.ListFilter) ([]*catalogmodels.Vaccine, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service orchestrates schedule generation, synchronization, completion,
// and reminders.
type Service struct {
	doses     DoseStore
	reminders ReminderStore
	subjects  SubjectProvider
	catalog   CatalogProvider
	tx        ScheduleTx
	publisher EventPublisher
	metrics   *schedulemetrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *schedulemetrics.Metrics) Option {
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

// WithTx replaces the in-memory per-subject lock, e.g. with a database
// transaction holding an advisory lock.
func WithTx(tx ScheduleTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(doses DoseStore, reminders ReminderStore, subjects SubjectProvider, catalog CatalogProvider, opts ...Option) *Service {
	s := &Service{
		doses:     doses,
		reminders: reminders,
		subjects:  subjects,
		catalog:   catalog,
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

// resolveSubject loads a subject the caller may act on. Missing and foreign
// subjects are both reported as not found.
func (s *Service) resolveSubject(ctx context.Context, subjectID id.SubjectID) (*subjectmodels.Subject, error) {
	if subjectID.IsNil() {
		return nil, dErrors.Invalid("subject_id", "is required")
	}
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

func (s *Service) publish(ctx context.Context, eventType events.Type, subjectID id.SubjectID, data map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(ctx, eventType, subjectID.String(), data)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish schedule event",
			"event_type", string(eventType),
			"subject_id", subjectID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
