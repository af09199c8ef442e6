package main

import (
	"context"
	"database/sql"
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	txcontext "vaxtrack/pkg/platform/tx"
)

const defaultSubjectTxTimeout = 5 * time.Second

// subjectPostgresTx runs schedule and planner writes in one transaction that
// holds a per-subject advisory lock until commit or rollback.
type subjectPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newSubjectPostgresTx(db *sql.DB) *subjectPostgresTx {
	return &subjectPostgresTx{db: db}
}

func (t *subjectPostgresTx) RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSubjectTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, subjectID.String()); err != nil {
		return err
	}

	txCtx := txcontext.WithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		return err
	}

	return tx.Commit()
}
