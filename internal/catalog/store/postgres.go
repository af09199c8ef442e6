package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vaxtrack/internal/catalog/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
	txcontext "vaxtrack/pkg/platform/tx"
)

// PostgresStore persists the catalog in the vaccines table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const vaccineColumns = `id, name, type, category, total_doses, frequency, when_to_give,
	min_age_months, max_age_months, dose_offsets, active, created_at, updated_at`

// List returns matching vaccines ordered by minimum age, then name.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Vaccine, error) {
	query := `
		SELECT ` + vaccineColumns + `
		FROM vaccines
		WHERE ($1 = false OR active)
			AND ($2 = '' OR type = $2)
			AND ($3 = '' OR lower(category) = lower($3))
			AND ($4 = 0 OR min_age_months * 30 <= $4)
		ORDER BY min_age_months, name
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query,
		filter.ActiveOnly, string(filter.Type), filter.Category, filter.MaxMinAgeDays)
	if err != nil {
		return nil, fmt.Errorf("list vaccines: %w", err)
	}
	defer rows.Close()

	var out []*models.Vaccine
	for rows.Next() {
		v, err := scanVaccine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vaccine: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vaccines: %w", err)
	}
	return out, nil
}

// FindByID returns sentinel.ErrNotFound for unknown vaccines.
func (s *PostgresStore) FindByID(ctx context.Context, vaccineID id.VaccineID) (*models.Vaccine, error) {
	query := `SELECT ` + vaccineColumns + ` FROM vaccines WHERE id = $1`
	v, err := scanVaccine(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(vaccineID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vaccine by id: %w", err)
	}
	return v, nil
}

// Upsert inserts a vaccine or updates the row with the same name, writing the
// stored ID back into v.
func (s *PostgresStore) Upsert(ctx context.Context, v *models.Vaccine) error {
	query := `
		INSERT INTO vaccines (` + vaccineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (name) DO UPDATE SET
			type = EXCLUDED.type,
			category = EXCLUDED.category,
			total_doses = EXCLUDED.total_doses,
			frequency = EXCLUDED.frequency,
			when_to_give = EXCLUDED.when_to_give,
			min_age_months = EXCLUDED.min_age_months,
			max_age_months = EXCLUDED.max_age_months,
			dose_offsets = EXCLUDED.dose_offsets,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	var stored uuid.UUID
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(v.ID),
		v.Name,
		string(v.Type),
		v.Category,
		nullInt(v.TotalDoses),
		v.Frequency,
		v.WhenToGive,
		v.MinAgeMonths,
		nullInt(v.MaxAgeMonths),
		pq.Array(toInt64s(v.DoseOffsets)),
		v.Active,
		v.CreatedAt,
		v.UpdatedAt,
	).Scan(&stored)
	if err != nil {
		return fmt.Errorf("upsert vaccine %q: %w", v.Name, err)
	}
	v.ID = id.VaccineID(stored)
	return nil
}

type vaccineRow interface {
	Scan(dest ...any) error
}

func scanVaccine(row vaccineRow) (*models.Vaccine, error) {
	var (
		vaccineID    uuid.UUID
		vaccineType  string
		totalDoses   sql.NullInt64
		maxAgeMonths sql.NullInt64
		offsets      pq.Int64Array
		v            models.Vaccine
	)
	if err := row.Scan(
		&vaccineID, &v.Name, &vaccineType, &v.Category, &totalDoses,
		&v.Frequency, &v.WhenToGive, &v.MinAgeMonths, &maxAgeMonths,
		&offsets, &v.Active, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}

	v.ID = id.VaccineID(vaccineID)
	v.Type = models.VaccineType(vaccineType)
	v.TotalDoses = intPtr(totalDoses)
	v.MaxAgeMonths = intPtr(maxAgeMonths)
	if len(offsets) > 0 {
		v.DoseOffsets = make([]int, len(offsets))
		for i, o := range offsets {
			v.DoseOffsets[i] = int(o)
		}
	}
	return &v, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
