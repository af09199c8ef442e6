package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/sentinel"
	txcontext "vaxtrack/pkg/platform/tx"
)

// PostgresStore persists subjects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (id, kind, owner_id, date_of_birth, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var dob sql.NullTime
	if subject.DateOfBirth != nil {
		dob = sql.NullTime{Time: *subject.DateOfBirth, Valid: true}
	}
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(subject.ID),
		string(subject.Kind),
		uuid.UUID(subject.OwnerID),
		dob,
		subject.Country,
		subject.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subject already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	query := `
		SELECT id, kind, owner_id, date_of_birth, country, created_at
		FROM subjects
		WHERE id = $1
	`
	var (
		rawID, ownerID uuid.UUID
		kind           string
		dob            sql.NullTime
		subject        models.Subject
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(subjectID)).
		Scan(&rawID, &kind, &ownerID, &dob, &subject.Country, &subject.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	subject.ID = id.SubjectID(rawID)
	subject.Kind = models.Kind(kind)
	subject.OwnerID = id.UserID(ownerID)
	if dob.Valid {
		t := dob.Time.UTC()
		subject.DateOfBirth = &t
	}
	return &subject, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
