package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vaxtrack/internal/planner/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
	txcontext "vaxtrack/pkg/platform/tx"
)

// PostgresStore persists planner entries in planner_entries. ReplacePending
// must run inside the caller's transaction for the delete and insert to be
// atomic.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, subject_id, vaccine_id, vaccine_name, occurrence, scheduled_date, status, priority,
	reminder_title, reminder_message, reminder_date, reminder_time, completed_date, completed_city, notes, created_at`

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM planner_entries WHERE subject_id = $1 ORDER BY scheduled_date, vaccine_name`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, uuid.UUID(subjectID))
	if err != nil {
		return nil, fmt.Errorf("list planner entries: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planner entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list planner entries: %w", err)
	}
	models.SortForDisplay(out)
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID, entryID id.PlannerEntryID) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM planner_entries WHERE id = $1 AND subject_id = $2`
	e, err := scanEntry(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(entryID), uuid.UUID(subjectID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find planner entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ReplacePending(ctx context.Context, subjectID id.SubjectID, entries []*models.Entry) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := exec.ExecContext(ctx,
		`DELETE FROM planner_entries WHERE subject_id = $1 AND status <> 'completed'`,
		uuid.UUID(subjectID),
	); err != nil {
		return fmt.Errorf("delete pending planner entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	n := len(entries)
	var (
		ids, subjects, vaccines, names = make([]string, n), make([]string, n), make([]string, n), make([]string, n)
		occurrences                    = make([]int64, n)
		dates, statuses, priorities    = make([]string, n), make([]string, n), make([]string, n)
		titles, messages               = make([]string, n), make([]string, n)
		reminderDates, reminderTimes   = make([]string, n), make([]string, n)
		createdAt                      = make([]string, n)
	)
	for i, e := range entries {
		ids[i] = e.ID.String()
		subjects[i] = e.SubjectID.String()
		vaccines[i] = e.VaccineID.String()
		names[i] = e.VaccineName
		occurrences[i] = int64(e.Occurrence)
		dates[i] = e.ScheduledDate.Format(time.DateOnly)
		statuses[i] = string(e.Status)
		priorities[i] = string(e.Priority)
		titles[i] = e.ReminderTitle
		messages[i] = e.ReminderMessage
		reminderDates[i] = e.ReminderDate.Format(time.DateOnly)
		reminderTimes[i] = e.ReminderTime
		createdAt[i] = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	query := `
		INSERT INTO planner_entries (id, subject_id, vaccine_id, vaccine_name, occurrence, scheduled_date, status,
			priority, reminder_title, reminder_message, reminder_date, reminder_time, created_at)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::text[], $5::int[], $6::date[], $7::text[],
			$8::text[], $9::text[], $10::text[], $11::date[], $12::text[], $13::timestamptz[])
	`
	if _, err := exec.ExecContext(ctx, query,
		pq.Array(ids), pq.Array(subjects), pq.Array(vaccines), pq.Array(names), pq.Array(occurrences),
		pq.Array(dates), pq.Array(statuses), pq.Array(priorities), pq.Array(titles), pq.Array(messages),
		pq.Array(reminderDates), pq.Array(reminderTimes), pq.Array(createdAt),
	); err != nil {
		return fmt.Errorf("insert planner entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, entry *models.Entry) error {
	query := `
		UPDATE planner_entries
		SET status = 'completed', completed_date = $3, completed_city = $4, notes = $5
		WHERE id = $1 AND subject_id = $2 AND status <> 'completed'
	`
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(entry.ID), uuid.UUID(entry.SubjectID), entry.CompletedDate, entry.CompletedCity, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("complete planner entry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete planner entry rows: %w", err)
	}
	if rows == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, entry.SubjectID, entry.ID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

type entryRow interface {
	Scan(dest ...any) error
}

func scanEntry(row entryRow) (*models.Entry, error) {
	var (
		entryID, subjectID, vaccineID uuid.UUID
		status, priority              string
		completed                     sql.NullTime
		city, notes                   sql.NullString
		e                             models.Entry
	)
	if err := row.Scan(
		&entryID, &subjectID, &vaccineID, &e.VaccineName, &e.Occurrence, &e.ScheduledDate, &status, &priority,
		&e.ReminderTitle, &e.ReminderMessage, &e.ReminderDate, &e.ReminderTime, &completed, &city, &notes, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.ID = id.PlannerEntryID(entryID)
	e.SubjectID = id.SubjectID(subjectID)
	e.VaccineID = id.VaccineID(vaccineID)
	e.ScheduledDate = id.DateOnly(e.ScheduledDate)
	e.ReminderDate = id.DateOnly(e.ReminderDate)
	e.Status = models.Status(status)
	e.Priority = models.Priority(priority)
	if completed.Valid {
		d := id.DateOnly(completed.Time)
		e.CompletedDate = &d
	}
	e.CompletedCity = city.String
	e.Notes = notes.String
	return &e, nil
}
