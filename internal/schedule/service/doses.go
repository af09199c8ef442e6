package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	catalogmodels "vaxtrack/internal/catalog/models"
	"vaxtrack/internal/events"
	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/requestcontext"
)

// List returns the subject's active doses ordered by scheduled date, each
// with its vaccine name and active reminders.
func (s *Service) List(ctx context.Context, subjectID id.SubjectID, filter models.ListFilter) ([]*models.ScheduleEntry, error) {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	doses, err := s.doses.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list doses")
	}
	vaccines, err := s.catalog.List(ctx, catalogmodels.ListFilter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vaccine catalog")
	}
	reminders, err := s.reminders.ListActiveReminders(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reminders")
	}

	names := make(map[id.VaccineID]string, len(vaccines))
	for _, v := range vaccines {
		names[v.ID] = v.Name
	}
	byDose := make(map[id.DoseID][]*models.Reminder)
	for _, r := range reminders {
		byDose[r.DoseID] = append(byDose[r.DoseID], r)
	}

	entries := make([]*models.ScheduleEntry, 0, len(doses))
	for _, dose := range doses {
		if !dose.Active || !filter.Matches(dose) {
			continue
		}
		entries = append(entries, &models.ScheduleEntry{
			Dose:        dose,
			VaccineName: names[dose.VaccineID],
			Reminders:   byDose[dose.ID],
		})
	}
	slices.SortStableFunc(entries, func(a, b *models.ScheduleEntry) int {
		return cmp.Or(
			a.Dose.ScheduledDate.Compare(b.Dose.ScheduledDate),
			strings.Compare(a.VaccineName, b.VaccineName),
			cmp.Compare(a.Dose.DoseNumber, b.Dose.DoseNumber),
		)
	})
	return entries, nil
}

// CompleteDose records administration of a dose. Completion is terminal.
func (s *Service) CompleteDose(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID, completion models.Completion) (*models.DoseInstance, error) {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var completed *models.DoseInstance
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		dose, err := s.findDose(ctx, subjectID, doseID)
		if err != nil {
			return err
		}
		if err := dose.Complete(completion, now); err != nil {
			return err
		}
		if err := s.doses.MarkCompleted(ctx, dose); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidState, "dose already completed")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete dose")
		}
		completed = dose
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDoseCompleted()
	s.logger.InfoContext(ctx, "dose completed",
		"subject_id", subjectID.String(),
		"dose_id", doseID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, events.TypeDoseCompleted, subjectID, map[string]any{
		"dose_id":        doseID.String(),
		"vaccine_id":     completed.VaccineID.String(),
		"dose_number":    completed.DoseNumber,
		"completed_date": completed.CompletedDate.Format(time.DateOnly),
	})
	return completed, nil
}

// ReminderCommand describes reminder metadata for a dose.
type ReminderCommand struct {
	Title    string
	Message  string
	RemindAt time.Time
}

// CreateReminder attaches reminder metadata to an active dose.
func (s *Service) CreateReminder(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID, cmd ReminderCommand) (*models.Reminder, error) {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	if cmd.RemindAt.IsZero() {
		return nil, dErrors.Invalid("remind_at", "is required")
	}
	dose, err := s.findDose(ctx, subjectID, doseID)
	if err != nil {
		return nil, err
	}
	if !dose.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "dose not found")
	}

	reminder := &models.Reminder{
		ID:        id.NewReminderID(),
		DoseID:    doseID,
		SubjectID: subjectID,
		Title:     cmd.Title,
		Message:   cmd.Message,
		RemindAt:  cmd.RemindAt.UTC(),
		Active:    true,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.reminders.CreateReminder(ctx, reminder); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reminder")
	}
	return reminder, nil
}

// DeactivateReminder hides a reminder from future listings.
func (s *Service) DeactivateReminder(ctx context.Context, subjectID id.SubjectID, reminderID id.ReminderID) error {
	if _, err := s.resolveSubject(ctx, subjectID); err != nil {
		return err
	}
	if err := s.reminders.DeactivateReminder(ctx, subjectID, reminderID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "reminder not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate reminder")
	}
	return nil
}

func (s *Service) findDose(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID) (*models.DoseInstance, error) {
	dose, err := s.doses.FindByID(ctx, subjectID, doseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dose not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dose")
	}
	return dose, nil
}
