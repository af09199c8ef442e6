// Package seed loads the reference vaccine catalog embedded in the binary.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vaxtrack/internal/catalog/models"
	id "vaxtrack/pkg/domain"
)

//go:embed vaccines.yaml
var defaultCatalog []byte

// namespace derives stable vaccine ids from names.
var namespace = uuid.MustParse("6f1c3b2a-8d4e-5f60-9a7b-0c1d2e3f4a5b")

type Store interface {
	Upsert(ctx context.Context, v *models.Vaccine) error
}

type vaccineDoc struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Category     string `yaml:"category"`
	TotalDoses   *int   `yaml:"total_doses"`
	Frequency    string `yaml:"frequency"`
	WhenToGive   string `yaml:"when_to_give"`
	MinAgeMonths int    `yaml:"min_age_months"`
	MaxAgeMonths *int   `yaml:"max_age_months"`
	DoseOffsets  []int  `yaml:"dose_offsets"`
	Inactive     bool   `yaml:"inactive"`
}

type catalogDoc struct {
	Vaccines []vaccineDoc `yaml:"vaccines"`
}

// VaccineID returns the id seeding assigns to a vaccine name.
func VaccineID(name string) id.VaccineID {
	return id.VaccineID(uuid.NewSHA1(namespace, []byte(strings.ToLower(strings.TrimSpace(name)))))
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, now time.Time) ([]*models.Vaccine, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Vaccines))
	out := make([]*models.Vaccine, 0, len(doc.Vaccines))
	for i, d := range doc.Vaccines {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("vaccine %d: name is required", i)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("vaccine %q: duplicate name", name)
		}
		seen[strings.ToLower(name)] = true

		vt := models.VaccineType(d.Type)
		if !vt.IsValid() {
			return nil, fmt.Errorf("vaccine %q: invalid type %q", name, d.Type)
		}
		if d.TotalDoses != nil && *d.TotalDoses < 1 {
			return nil, fmt.Errorf("vaccine %q: total_doses must be at least 1", name)
		}
		if d.MinAgeMonths < 0 || (d.MaxAgeMonths != nil && *d.MaxAgeMonths < d.MinAgeMonths) {
			return nil, fmt.Errorf("vaccine %q: invalid age range", name)
		}

		out = append(out, &models.Vaccine{
			ID:           VaccineID(name),
			Name:         name,
			Type:         vt,
			Category:     d.Category,
			TotalDoses:   d.TotalDoses,
			Frequency:    d.Frequency,
			WhenToGive:   d.WhenToGive,
			MinAgeMonths: d.MinAgeMonths,
			MaxAgeMonths: d.MaxAgeMonths,
			DoseOffsets:  d.DoseOffsets,
			Active:       !d.Inactive,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out, nil
}

type Seeder struct {
	store  Store
	logger *slog.Logger
	data   []byte
}

// New creates a seeder for the embedded catalog.
func New(store Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger, data: defaultCatalog}
}

// WithData replaces the embedded catalog, e.g. with an operator-supplied file.
func (s *Seeder) WithData(data []byte) *Seeder {
	s.data = data
	return s
}

// SeedAll upserts every catalog vaccine and returns how many were written.
func (s *Seeder) SeedAll(ctx context.Context) (int, error) {
	vaccines, err := Parse(s.data, time.Now())
	if err != nil {
		return 0, err
	}
	for _, v := range vaccines {
		if err := s.store.Upsert(ctx, v); err != nil {
			return 0, fmt.Errorf("failed to seed vaccine %q: %w", v.Name, err)
		}
	}
	s.logger.InfoContext(ctx, "vaccine catalog seeded", "vaccines", len(vaccines))
	return len(vaccines), nil
}
