// Package store persists planner entries.
package store

import (
	"context"
	"sync"

	"vaxtrack/internal/planner/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	entries map[id.PlannerEntryID]*models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.PlannerEntryID]*models.Entry)}
}

func (s *InMemory) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Entry
	for _, e := range s.entries {
		if e.SubjectID == subjectID {
			out = append(out, clone(e))
		}
	}
	models.SortForDisplay(out)
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, subjectID id.SubjectID, entryID id.PlannerEntryID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok || e.SubjectID != subjectID {
		return nil, sentinel.ErrNotFound
	}
	return clone(e), nil
}

// ReplacePending keeps completed entries and swaps everything else for entries.
func (s *InMemory) ReplacePending(_ context.Context, subjectID id.SubjectID, entries []*models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for entryID, e := range s.entries {
		if e.SubjectID == subjectID && e.Status != models.StatusCompleted {
			delete(s.entries, entryID)
		}
	}
	for _, e := range entries {
		if _, exists := s.entries[e.ID]; exists {
			return sentinel.ErrConflict
		}
		s.entries[e.ID] = clone(e)
	}
	return nil
}

func (s *InMemory) MarkCompleted(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[entry.ID]
	if !ok || existing.SubjectID != entry.SubjectID {
		return sentinel.ErrNotFound
	}
	if existing.Status == models.StatusCompleted {
		return sentinel.ErrInvalidState
	}
	s.entries[entry.ID] = clone(entry)
	return nil
}

func clone(e *models.Entry) *models.Entry {
	c := *e
	if e.CompletedDate != nil {
		d := *e.CompletedDate
		c.CompletedDate = &d
	}
	return &c
}
