package service

import (
	"context"
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	platformsync "vaxtrack/pkg/platform/sync"
)

// ScheduleTx runs fn as one serialized, atomic unit for a subject.
// Implementations may wrap a database transaction with an advisory lock or
// an in-memory lock.
type ScheduleTx interface {
	RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes work per subject with a sharded mutex. It provides
// isolation but not rollback; in-memory stores apply writes immediately.
type InMemoryTx struct {
	locks   *platformsync.ShardedMutex
	timeout time.Duration
}

func NewInMemoryTx() *InMemoryTx {
	return &InMemoryTx{locks: platformsync.NewShardedMutex(), timeout: defaultTxTimeout}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	return t.locks.WithLock(subjectID.String(), func() error {
		if err := ctx.Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
		return fn(ctx)
	})
}
