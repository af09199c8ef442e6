package service

import (
	"context"
	"time"

	"vaxtrack/internal/catalog/frequency"
	catalogmodels "vaxtrack/internal/catalog/models"
	"vaxtrack/internal/events"
	"vaxtrack/internal/platform/tracer"
	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/requestcontext"
)

// HorizonYears bounds how far past birth doses are scheduled.
const HorizonYears = 100

// GenerateResult reports how a regeneration changed the subject's schedule.
type GenerateResult struct {
	Added        int
	Updated      int
	Removed      int
	Synchronized int
}

// Generate materializes the subject's dose instances from the catalog.
//
// Regeneration is a diff keyed by (vaccine, dose number): missing doses are
// inserted, pending doses whose date moved are rescheduled in place (notes,
// city, and image are kept), completed doses are never touched, and pending
// doses no longer planned are removed. Running it twice with unchanged inputs
// changes nothing. Statuses are synchronized when anything was added or
// rescheduled.
func (s *Service) Generate(ctx context.Context, subjectID id.SubjectID) (_ *GenerateResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanScheduleGenerate, tracer.String(tracer.AttrSubjectID, subjectID.String()))
	defer func() { span.End(err) }()

	subject, err := s.resolveSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !subject.HasDateOfBirth() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject has no date of birth")
	}

	dob := id.DateOnly(*subject.DateOfBirth)
	horizon := dob.AddDate(HorizonYears, 0, 0)
	vaccines, err := s.catalog.List(ctx, catalogmodels.ListFilter{
		ActiveOnly:    true,
		MaxMinAgeDays: id.DaysBetween(dob, horizon),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vaccine catalog")
	}
	span.SetAttributes(tracer.Int(tracer.AttrVaccineCount, len(vaccines)))
	plan := planDoses(vaccines, dob, horizon)

	now := requestcontext.Now(ctx)
	result := &GenerateResult{}
	err = s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		existing, err := s.doses.ListBySubject(ctx, subjectID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load existing doses")
		}
		d := diffSchedule(subjectID, existing, plan, now)

		// Removals run first so reinserted slots never collide with the rows they replace.
		if len(d.removals) > 0 {
			if result.Removed, err = s.doses.DeleteByIDs(ctx, d.removals); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove doses")
			}
		}
		if len(d.reschedules) > 0 {
			if result.Updated, err = s.doses.UpdateScheduledDates(ctx, d.reschedules); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reschedule doses")
			}
		}
		if len(d.inserts) > 0 {
			if err := s.doses.InsertBatch(ctx, d.inserts); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert doses")
			}
		}
		result.Added = len(d.inserts)

		if result.Added+result.Updated > 0 {
			if result.Synchronized, err = s.synchronize(ctx, subjectID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "schedule generation failed",
			"subject_id", subjectID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	span.SetAttributes(
		tracer.Int(tracer.AttrAdded, result.Added),
		tracer.Int(tracer.AttrUpdated, result.Updated),
		tracer.Int(tracer.AttrRemoved, result.Removed),
	)
	s.metrics.ObserveGenerate(time.Since(start).Seconds(), result.Added, result.Updated, result.Removed)
	s.logger.InfoContext(ctx, "schedule generated",
		"subject_id", subjectID.String(),
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
		"synchronized", result.Synchronized,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, events.TypeScheduleGenerated, subjectID, map[string]any{
		"added":        result.Added,
		"updated":      result.Updated,
		"removed":      result.Removed,
		"synchronized": result.Synchronized,
	})
	return result, nil
}

type plannedDose struct {
	key           models.Key
	scheduledDate time.Time
}

// planDoses expands every vaccine into dated doses, dropping any past the
// horizon. Vaccines arrive ordered by minimum age.
func planDoses(vaccines []*catalogmodels.Vaccine, dob, horizon time.Time) []plannedDose {
	var plan []plannedDose
	for _, v := range vaccines {
		for _, offset := range frequency.Parse(v) {
			scheduled := id.AddDays(dob, offset.MinAgeDays)
			if scheduled.After(horizon) {
				continue
			}
			plan = append(plan, plannedDose{
				key:           models.Key{VaccineID: v.ID, DoseNumber: offset.DoseNumber},
				scheduledDate: scheduled,
			})
		}
	}
	return plan
}

type scheduleDiff struct {
	inserts     []*models.DoseInstance
	reschedules []models.DateChange
	removals    []id.DoseID
}

func diffSchedule(subjectID id.SubjectID, existing []*models.DoseInstance, plan []plannedDose, now time.Time) scheduleDiff {
	var d scheduleDiff

	// One row per slot survives. A completed row wins over pending duplicates.
	current := make(map[models.Key]*models.DoseInstance, len(existing))
	for _, dose := range existing {
		if !dose.Active && dose.Status != models.StatusCompleted {
			d.removals = append(d.removals, dose.ID)
			continue
		}
		kept, ok := current[dose.Key()]
		switch {
		case !ok:
			current[dose.Key()] = dose
		case dose.Status == models.StatusCompleted && kept.Status != models.StatusCompleted:
			d.removals = append(d.removals, kept.ID)
			current[dose.Key()] = dose
		case dose.Status != models.StatusCompleted:
			d.removals = append(d.removals, dose.ID)
		}
	}

	planned := make(map[models.Key]struct{}, len(plan))
	for _, p := range plan {
		planned[p.key] = struct{}{}
		dose, ok := current[p.key]
		if !ok {
			d.inserts = append(d.inserts, &models.DoseInstance{
				ID:            id.NewDoseID(),
				SubjectID:     subjectID,
				VaccineID:     p.key.VaccineID,
				DoseNumber:    p.key.DoseNumber,
				ScheduledDate: p.scheduledDate,
				Status:        models.ComputeStatus(p.scheduledDate, now),
				Active:        true,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			continue
		}
		if dose.Status == models.StatusCompleted {
			continue
		}
		if !id.DateOnly(dose.ScheduledDate).Equal(p.scheduledDate) {
			d.reschedules = append(d.reschedules, models.DateChange{DoseID: dose.ID, ScheduledDate: p.scheduledDate})
		}
	}

	for key, dose := range current {
		if _, ok := planned[key]; ok || dose.Status == models.StatusCompleted {
			continue
		}
		d.removals = append(d.removals, dose.ID)
	}
	return d
}
