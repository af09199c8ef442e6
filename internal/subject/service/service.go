// Package service registers subjects and resolves them for the scheduling
// engines.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, subject *models.Subject) error
	FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
}

// Service owns subject registration and lookup.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterCommand describes a new subject. Kind user registers the caller
// itself; kind dependent creates a subject managed by the caller.
type RegisterCommand struct {
	Kind        models.Kind
	DateOfBirth *time.Time
	Country     string
}

// Register creates a subject for the authenticated caller.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*models.Subject, error) {
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := requestcontext.Now(ctx)
	if cmd.DateOfBirth != nil && id.DateOnly(*cmd.DateOfBirth).After(id.DateOnly(now)) {
		return nil, dErrors.Invalid("date_of_birth", "cannot be in the future")
	}

	subject := &models.Subject{
		Kind:      cmd.Kind,
		OwnerID:   caller,
		Country:   strings.ToUpper(strings.TrimSpace(cmd.Country)),
		CreatedAt: now,
	}
	if cmd.DateOfBirth != nil {
		dob := id.DateOnly(*cmd.DateOfBirth)
		subject.DateOfBirth = &dob
	}
	switch cmd.Kind {
	case models.KindUser:
		subject.ID = id.SubjectID(caller)
	case models.KindDependent:
		subject.ID = id.NewSubjectID()
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "kind must be user or dependent")
	}

	if err := s.store.Create(ctx, subject); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "subject already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register subject")
	}

	s.logger.InfoContext(ctx, "subject registered",
		"subject_id", subject.ID.String(),
		"kind", string(subject.Kind),
		"request_id", requestcontext.RequestID(ctx),
	)
	return subject, nil
}

// Get returns a subject visible to the caller. Subjects owned by someone else
// are reported as not found.
func (s *Service) Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	subject, err := s.store.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	if !subject.AccessibleBy(requestcontext.UserID(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	return subject, nil
}
