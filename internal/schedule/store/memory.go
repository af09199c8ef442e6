// Package store persists dose instances and their reminders.
package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
)

// InMemory stores doses and reminders in memory. Deleting a dose deletes its
// reminders, matching the database cascade.
type InMemory struct {
	mu        sync.RWMutex
	doses     map[id.DoseID]*models.DoseInstance
	reminders map[id.ReminderID]*models.Reminder
	now       func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		doses:     make(map[id.DoseID]*models.DoseInstance),
		reminders: make(map[id.ReminderID]*models.Reminder),
		now:       time.Now,
	}
}

// ListBySubject returns every dose of the subject ordered by vaccine, then
// dose number.
func (s *InMemory) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error) {
	return s.collect(func(d *models.DoseInstance) bool { return d.SubjectID == subjectID }), nil
}

// ListPending returns the subject's active doses that are not completed.
func (s *InMemory) ListPending(_ context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error) {
	return s.collect(func(d *models.DoseInstance) bool { return d.SubjectID == subjectID && d.IsPending() }), nil
}

func (s *InMemory) FindByID(_ context.Context, subjectID id.SubjectID, doseID id.DoseID) (*models.DoseInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doses[doseID]
	if !ok || d.SubjectID != subjectID {
		return nil, sentinel.ErrNotFound
	}
	return cloneDose(d), nil
}

// InsertBatch rejects the whole batch with sentinel.ErrConflict if any slot
// (subject, vaccine, dose number) is already taken.
func (s *InMemory) InsertBatch(_ context.Context, doses []*models.DoseInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[slot]struct{}, len(s.doses))
	for _, d := range s.doses {
		taken[slotOf(d)] = struct{}{}
	}
	for _, d := range doses {
		if _, ok := taken[slotOf(d)]; ok {
			return sentinel.ErrConflict
		}
		taken[slotOf(d)] = struct{}{}
	}
	for _, d := range doses {
		s.doses[d.ID] = cloneDose(d)
	}
	return nil
}

// UpdateScheduledDates moves pending doses; completed doses are skipped.
func (s *InMemory) UpdateScheduledDates(_ context.Context, changes []models.DateChange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	updated := 0
	for _, c := range changes {
		d, ok := s.doses[c.DoseID]
		if !ok || d.Status == models.StatusCompleted {
			continue
		}
		d.ScheduledDate = id.DateOnly(c.ScheduledDate)
		d.UpdatedAt = now
		updated++
	}
	return updated, nil
}

// DeleteByIDs removes pending doses and their reminders; completed doses are
// kept.
func (s *InMemory) DeleteByIDs(_ context.Context, doseIDs []id.DoseID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, doseID := range doseIDs {
		d, ok := s.doses[doseID]
		if !ok || d.Status == models.StatusCompleted {
			continue
		}
		delete(s.doses, doseID)
		for rid, r := range s.reminders {
			if r.DoseID == doseID {
				delete(s.reminders, rid)
			}
		}
		deleted++
	}
	return deleted, nil
}

// UpdateStatuses applies changes to non-completed doses whose status differs.
func (s *InMemory) UpdateStatuses(_ context.Context, changes []models.StatusChange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	updated := 0
	for _, c := range changes {
		d, ok := s.doses[c.DoseID]
		if !ok || d.Status == models.StatusCompleted || d.Status == c.Status {
			continue
		}
		d.Status = c.Status
		d.UpdatedAt = now
		updated++
	}
	return updated, nil
}

func (s *InMemory) MarkCompleted(_ context.Context, dose *models.DoseInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.doses[dose.ID]
	if !ok || d.SubjectID != dose.SubjectID {
		return sentinel.ErrNotFound
	}
	if d.Status == models.StatusCompleted {
		return sentinel.ErrInvalidState
	}
	s.doses[dose.ID] = cloneDose(dose)
	return nil
}

// ListSubjectsWithPending pages subject IDs in UUID order.
func (s *InMemory) ListSubjectsWithPending(_ context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[id.SubjectID]struct{})
	var out []id.SubjectID
	for _, d := range s.doses {
		if !d.IsPending() || !afterSubject(d.SubjectID, after) {
			continue
		}
		if _, ok := seen[d.SubjectID]; ok {
			continue
		}
		seen[d.SubjectID] = struct{}{}
		out = append(out, d.SubjectID)
	}
	slices.SortFunc(out, func(a, b id.SubjectID) int { return compareUUID(a, b) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) CreateReminder(_ context.Context, reminder *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doses[reminder.DoseID]; !ok {
		return sentinel.ErrNotFound
	}
	r := *reminder
	s.reminders[r.ID] = &r
	return nil
}

// ListActiveReminders returns active reminders ordered by remind time.
func (s *InMemory) ListActiveReminders(_ context.Context, subjectID id.SubjectID) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.SubjectID == subjectID && r.Active {
			c := *r
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Reminder) int { return a.RemindAt.Compare(b.RemindAt) })
	return out, nil
}

func (s *InMemory) DeactivateReminder(_ context.Context, subjectID id.SubjectID, reminderID id.ReminderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[reminderID]
	if !ok || r.SubjectID != subjectID || !r.Active {
		return sentinel.ErrNotFound
	}
	r.Active = false
	return nil
}

func (s *InMemory) collect(keep func(*models.DoseInstance) bool) []*models.DoseInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DoseInstance
	for _, d := range s.doses {
		if keep(d) {
			out = append(out, cloneDose(d))
		}
	}
	slices.SortFunc(out, func(a, b *models.DoseInstance) int {
		return cmp.Or(compareUUID(a.VaccineID, b.VaccineID), cmp.Compare(a.DoseNumber, b.DoseNumber))
	})
	return out
}

type slot struct {
	subject id.SubjectID
	key     models.Key
}

func slotOf(d *models.DoseInstance) slot {
	return slot{subject: d.SubjectID, key: d.Key()}
}

func afterSubject(subjectID, after id.SubjectID) bool {
	return after.IsNil() || compareUUID(subjectID, after) > 0
}

// compareUUID orders IDs by their canonical string, which matches the byte
// order PostgreSQL uses for uuid columns.
func compareUUID(a, b fmt.Stringer) int {
	return strings.Compare(a.String(), b.String())
}

func cloneDose(d *models.DoseInstance) *models.DoseInstance {
	c := *d
	if d.CompletedDate != nil {
		t := *d.CompletedDate
		c.CompletedDate = &t
	}
	return &c
}
