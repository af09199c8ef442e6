package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"vaxtrack/internal/schedule/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
	txcontext "vaxtrack/pkg/platform/tx"
)

func (s *PostgresStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	query := `
		INSERT INTO dose_reminders (id, dose_id, subject_id, title, message, remind_at, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.DoseID), uuid.UUID(r.SubjectID),
		r.Title, r.Message, r.RemindAt, r.Active, r.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("reminder dose missing: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveReminders(ctx context.Context, subjectID id.SubjectID) ([]*models.Reminder, error) {
	query := `
		SELECT id, dose_id, subject_id, title, message, remind_at, active, created_at
		FROM dose_reminders
		WHERE subject_id = $1 AND active
		ORDER BY remind_at
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, uuid.UUID(subjectID))
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []*models.Reminder
	for rows.Next() {
		var (
			rid, doseID, subject uuid.UUID
			r                    models.Reminder
		)
		if err := rows.Scan(&rid, &doseID, &subject, &r.Title, &r.Message, &r.RemindAt, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.ID = id.ReminderID(rid)
		r.DoseID = id.DoseID(doseID)
		r.SubjectID = id.SubjectID(subject)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeactivateReminder(ctx context.Context, subjectID id.SubjectID, reminderID id.ReminderID) error {
	query := `UPDATE dose_reminders SET active = false WHERE id = $1 AND subject_id = $2 AND active`
	rows, err := s.execCount(ctx, "deactivate reminder", query, uuid.UUID(reminderID), uuid.UUID(subjectID))
	if err != nil {
		return err
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
