// Package store persists subjects.
package store

import (
	"context"
	"sync"

	"vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
)

// InMemory stores subjects in memory for tests and database-less runs.
type InMemory struct {
	mu       sync.RWMutex
	subjects map[id.SubjectID]*models.Subject
}

func NewInMemory() *InMemory {
	return &InMemory{subjects: make(map[id.SubjectID]*models.Subject)}
}

// Create returns sentinel.ErrConflict when the ID is taken.
func (s *InMemory) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subject.ID]; ok {
		return sentinel.ErrConflict
	}
	s.subjects[subject.ID] = clone(subject)
	return nil
}

// FindByID returns sentinel.ErrNotFound for unknown subjects.
func (s *InMemory) FindByID(_ context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjects[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(subject), nil
}

func clone(s *models.Subject) *models.Subject {
	c := *s
	if s.DateOfBirth != nil {
		dob := *s.DateOfBirth
		c.DateOfBirth = &dob
	}
	return &c
}
