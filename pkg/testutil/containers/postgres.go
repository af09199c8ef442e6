//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vaxtrack/internal/platform/database"
	"vaxtrack/migrations"
	id "vaxtrack/pkg/domain"
)

// externalPostgresEnv points the tests at an existing database instead of a
// container, e.g. a CI service.
const externalPostgresEnv = "VAXTRACK_TEST_DATABASE_URL"

// moduleTables are ordered children first.
var moduleTables = []string{"dose_reminders", "dose_instances", "planner_entries", "subjects", "vaccines"}

type PostgresContainer struct {
	Container testcontainers.Container // nil for an external database
	DSN       string
	DB        *sql.DB
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	pc := &PostgresContainer{DSN: os.Getenv(externalPostgresEnv)}
	if pc.DSN == "" {
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("vaxtrack_test"),
			postgres.WithUsername("vaxtrack"),
			postgres.WithPassword("vaxtrack_test_password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			return nil, err
		}
		pc.Container = container
		if pc.DSN, err = container.ConnectionString(ctx, "sslmode=disable"); err != nil {
			return nil, pc.abort(ctx, fmt.Errorf("connection string: %w", err))
		}
	}

	db, err := sql.Open("pgx", pc.DSN)
	if err != nil {
		return nil, pc.abort(ctx, err)
	}
	pc.DB = db
	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		return nil, pc.abort(ctx, fmt.Errorf("migrate: %w", err))
	}
	return pc, nil
}

func (p *PostgresContainer) abort(ctx context.Context, err error) error {
	if p.DB != nil {
		_ = p.DB.Close()
	}
	if p.Container != nil {
		_ = p.Container.Terminate(ctx)
	}
	return err
}

// TruncateModuleTables empties every vaxtrack table in one statement.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(moduleTables, ", ")+" CASCADE")
	if err != nil {
		return fmt.Errorf("truncate module tables: %w", err)
	}
	return nil
}

// CreateTestSubject inserts a self-owned user subject born on dob.
func (p *PostgresContainer) CreateTestSubject(ctx context.Context, t testing.TB, dob time.Time) id.SubjectID {
	t.Helper()
	subjectID := id.SubjectID(uuid.New())
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO subjects (id, kind, owner_id, date_of_birth, country)
		VALUES ($1, 'user', $1, $2, 'NG')
	`, uuid.UUID(subjectID), dob)
	if err != nil {
		t.Fatalf("CreateTestSubject: %v", err)
	}
	return subjectID
}
