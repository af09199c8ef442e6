package service

import (
	"context"
	"time"

	"vaxtrack/internal/events"
	"vaxtrack/internal/platform/tracer"
	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/requestcontext"
)

type SyncResult struct {
	Updated int
}

// Synchronize recomputes the status of every pending dose against the
// request time and persists the ones that changed in a single batch.
// Completed doses are never modified.
func (s *Service) Synchronize(ctx context.Context, subjectID id.SubjectID) (_ *SyncResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanScheduleSynchronize, tracer.String(tracer.AttrSubjectID, subjectID.String()))
	defer func() { span.End(err) }()

	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var updated int
	err = s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		var err error
		updated, err = s.synchronize(ctx, subjectID, now)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "status synchronization failed",
			"subject_id", subjectID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	span.SetAttributes(tracer.Int(tracer.AttrUpdated, updated))
	if updated > 0 {
		s.publish(ctx, events.TypeScheduleSynchronized, subjectID, map[string]any{"updated": updated})
	}
	return &SyncResult{Updated: updated}, nil
}

// synchronize runs inside the caller's transaction.
func (s *Service) synchronize(ctx context.Context, subjectID id.SubjectID, now time.Time) (int, error) {
	pending, err := s.doses.ListPending(ctx, subjectID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending doses")
	}

	changes := statusChanges(pending, now)
	if len(changes) == 0 {
		return 0, nil
	}
	updated, err := s.doses.UpdateStatuses(ctx, changes)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update dose statuses")
	}
	for _, c := range changes {
		s.metrics.IncStatusTransition(string(c.Status))
	}
	return updated, nil
}

func statusChanges(pending []*models.DoseInstance, now time.Time) []models.StatusChange {
	var changes []models.StatusChange
	for _, dose := range pending {
		if !dose.IsPending() {
			continue
		}
		if next := models.ComputeStatus(dose.ScheduledDate, now); next != dose.Status {
			changes = append(changes, models.StatusChange{DoseID: dose.ID, Status: next})
		}
	}
	return changes
}

// PendingSubjects pages through subjects that still have pending doses,
// ordered by ID and starting after the given one.
func (s *Service) PendingSubjects(ctx context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error) {
	subjects, err := s.doses.ListSubjectsWithPending(ctx, after, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subjects with pending doses")
	}
	return subjects, nil
}
