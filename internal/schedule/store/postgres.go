package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
	txcontext "vaxtrack/pkg/platform/tx"
)

// PostgresStore persists doses in dose_instances and reminders in
// dose_reminders. Multi-row writes use array parameters so each batch is a
// single statement.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const doseColumns = `id, subject_id, vaccine_id, dose_number, scheduled_date, status,
	completed_date, city, image_url, notes, active, created_at, updated_at`

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error) {
	query := `
		SELECT ` + doseColumns + `
		FROM dose_instances
		WHERE subject_id = $1
		ORDER BY vaccine_id, dose_number
	`
	return s.queryDoses(ctx, "list doses by subject", query, uuid.UUID(subjectID))
}

func (s *PostgresStore) ListPending(ctx context.Context, subjectID id.SubjectID) ([]*models.DoseInstance, error) {
	query := `
		SELECT ` + doseColumns + `
		FROM dose_instances
		WHERE subject_id = $1 AND active AND status <> 'completed'
		ORDER BY vaccine_id, dose_number
	`
	return s.queryDoses(ctx, "list pending doses", query, uuid.UUID(subjectID))
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID) (*models.DoseInstance, error) {
	query := `SELECT ` + doseColumns + ` FROM dose_instances WHERE id = $1 AND subject_id = $2`
	dose, err := scanDose(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(doseID), uuid.UUID(subjectID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find dose by id: %w", err)
	}
	return dose, nil
}

// InsertBatch writes all doses in one statement. A taken slot fails the
// whole batch with sentinel.ErrConflict.
func (s *PostgresStore) InsertBatch(ctx context.Context, doses []*models.DoseInstance) error {
	if len(doses) == 0 {
		return nil
	}
	n := len(doses)
	var (
		ids, subjects, vaccines = make([]string, n), make([]string, n), make([]string, n)
		numbers                 = make([]int64, n)
		dates, statuses         = make([]string, n), make([]string, n)
		createdAt               = make([]time.Time, n)
	)
	for i, d := range doses {
		ids[i] = d.ID.String()
		subjects[i] = d.SubjectID.String()
		vaccines[i] = d.VaccineID.String()
		numbers[i] = int64(d.DoseNumber)
		dates[i] = d.ScheduledDate.Format(time.DateOnly)
		statuses[i] = string(d.Status)
		createdAt[i] = d.CreatedAt
	}

	query := `
		INSERT INTO dose_instances (id, subject_id, vaccine_id, dose_number, scheduled_date, status, active, created_at, updated_at)
		SELECT t.id, t.subject_id, t.vaccine_id, t.dose_number, t.scheduled_date, t.status, true, t.created_at, t.created_at
		FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::int[], $5::date[], $6::text[], $7::timestamptz[])
			AS t(id, subject_id, vaccine_id, dose_number, scheduled_date, status, created_at)
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		pq.Array(ids), pq.Array(subjects), pq.Array(vaccines), pq.Array(numbers),
		pq.Array(dates), pq.Array(statuses), pq.Array(timestamps(createdAt)),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("dose slot already scheduled: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert doses: %w", err)
	}
	return nil
}

// UpdateScheduledDates moves pending doses in one statement; completed rows
// are excluded by the WHERE clause.
func (s *PostgresStore) UpdateScheduledDates(ctx context.Context, changes []models.DateChange) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	ids := make([]string, len(changes))
	dates := make([]string, len(changes))
	for i, c := range changes {
		ids[i] = c.DoseID.String()
		dates[i] = c.ScheduledDate.Format(time.DateOnly)
	}
	query := `
		UPDATE dose_instances d
		SET scheduled_date = c.scheduled_date, updated_at = now()
		FROM unnest($1::uuid[], $2::date[]) AS c(id, scheduled_date)
		WHERE d.id = c.id AND d.status <> 'completed'
	`
	return s.execCount(ctx, "reschedule doses", query, pq.Array(ids), pq.Array(dates))
}

// DeleteByIDs removes pending doses; reminders cascade.
func (s *PostgresStore) DeleteByIDs(ctx context.Context, doseIDs []id.DoseID) (int, error) {
	if len(doseIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(doseIDs))
	for i, d := range doseIDs {
		ids[i] = d.String()
	}
	query := `DELETE FROM dose_instances WHERE id = ANY($1::uuid[]) AND status <> 'completed'`
	return s.execCount(ctx, "delete doses", query, pq.Array(ids))
}

// UpdateStatuses persists a batch of status changes in one statement. Rows
// already completed, or already at the target status, are left alone.
func (s *PostgresStore) UpdateStatuses(ctx context.Context, changes []models.StatusChange) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	ids := make([]string, len(changes))
	statuses := make([]string, len(changes))
	for i, c := range changes {
		ids[i] = c.DoseID.String()
		statuses[i] = string(c.Status)
	}
	query := `
		UPDATE dose_instances d
		SET status = c.status, updated_at = now()
		FROM unnest($1::uuid[], $2::text[]) AS c(id, status)
		WHERE d.id = c.id AND d.status <> 'completed' AND d.status <> c.status
	`
	return s.execCount(ctx, "update dose statuses", query, pq.Array(ids), pq.Array(statuses))
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, dose *models.DoseInstance) error {
	query := `
		UPDATE dose_instances
		SET status = 'completed', completed_date = $3, city = $4, image_url = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND subject_id = $2 AND status <> 'completed'
	`
	rows, err := s.execCount(ctx, "complete dose", query,
		uuid.UUID(dose.ID), uuid.UUID(dose.SubjectID),
		dose.CompletedDate, dose.City, dose.ImageURL, dose.Notes, dose.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, dose.SubjectID, dose.ID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) ListSubjectsWithPending(ctx context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error) {
	var cursor any
	if !after.IsNil() {
		cursor = uuid.UUID(after)
	}
	query := `
		SELECT DISTINCT subject_id
		FROM dose_instances
		WHERE active AND status <> 'completed' AND ($1::uuid IS NULL OR subject_id > $1::uuid)
		ORDER BY subject_id
		LIMIT $2
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list subjects with pending doses: %w", err)
	}
	defer rows.Close()

	var out []id.SubjectID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan subject id: %w", err)
		}
		out = append(out, id.SubjectID(raw))
	}
	return out, rows.Err()
}

func (s *PostgresStore) queryDoses(ctx context.Context, op, query string, args ...any) ([]*models.DoseInstance, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*models.DoseInstance
	for rows.Next() {
		dose, err := scanDose(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, dose)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *PostgresStore) execCount(ctx context.Context, op, query string, args ...any) (int, error) {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows: %w", op, err)
	}
	return int(rows), nil
}

type doseRow interface {
	Scan(dest ...any) error
}

func scanDose(row doseRow) (*models.DoseInstance, error) {
	var (
		doseID, subjectID, vaccineID uuid.UUID
		status                       string
		completed                    sql.NullTime
		city, imageURL, notes        sql.NullString
		d                            models.DoseInstance
	)
	if err := row.Scan(
		&doseID, &subjectID, &vaccineID, &d.DoseNumber, &d.ScheduledDate, &status,
		&completed, &city, &imageURL, &notes, &d.Active, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.ID = id.DoseID(doseID)
	d.SubjectID = id.SubjectID(subjectID)
	d.VaccineID = id.VaccineID(vaccineID)
	d.ScheduledDate = id.DateOnly(d.ScheduledDate)
	d.Status = models.Status(status)
	if completed.Valid {
		t := id.DateOnly(completed.Time)
		d.CompletedDate = &t
	}
	d.City = city.String
	d.ImageURL = imageURL.String
	d.Notes = notes.String
	return &d, nil
}

func timestamps(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.UTC().Format(time.RFC3339Nano)
	}
	return out
}
