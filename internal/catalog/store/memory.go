// Package store persists catalog vaccines in memory, PostgreSQL, and a Redis
// read-through cache.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"vaxtrack/internal/catalog/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
)

// InMemory keeps the catalog in process memory. Used when no database is
// configured and in tests.
type InMemory struct {
	mu       sync.RWMutex
	vaccines map[id.VaccineID]*models.Vaccine
	byName   map[string]id.VaccineID
}

// NewInMemory creates an empty in-memory catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		vaccines: make(map[id.VaccineID]*models.Vaccine),
		byName:   make(map[string]id.VaccineID),
	}
}

// List returns matching vaccines ordered by minimum age, then name.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Vaccine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Vaccine, 0, len(s.vaccines))
	for _, v := range s.vaccines {
		if filter.Matches(v) {
			out = append(out, clone(v))
		}
	}
	sortVaccines(out)
	return out, nil
}

// FindByID returns sentinel.ErrNotFound for unknown vaccines.
func (s *InMemory) FindByID(_ context.Context, vaccineID id.VaccineID) (*models.Vaccine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vaccines[vaccineID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(v), nil
}

// Upsert inserts a vaccine or replaces the one with the same name.
// The existing ID and CreatedAt are kept when a name matches.
func (s *InMemory) Upsert(_ context.Context, v *models.Vaccine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(v)
	key := strings.ToLower(v.Name)
	if existingID, ok := s.byName[key]; ok {
		existing := s.vaccines[existingID]
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		v.ID = existing.ID
	}
	s.vaccines[stored.ID] = stored
	s.byName[key] = stored.ID
	return nil
}

func clone(v *models.Vaccine) *models.Vaccine {
	c := *v
	if v.TotalDoses != nil {
		n := *v.TotalDoses
		c.TotalDoses = &n
	}
	if v.MaxAgeMonths != nil {
		n := *v.MaxAgeMonths
		c.MaxAgeMonths = &n
	}
	c.DoseOffsets = slices.Clone(v.DoseOffsets)
	return &c
}

func sortVaccines(vs []*models.Vaccine) {
	slices.SortFunc(vs, func(a, b *models.Vaccine) int {
		return cmp.Or(cmp.Compare(a.MinAgeMonths, b.MinAgeMonths), cmp.Compare(a.Name, b.Name))
	})
}
