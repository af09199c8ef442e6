package service

import (
	"context"
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	platformsync "vaxtrack/pkg/platform/sync"
)

// PlannerTx runs fn as one serialized, atomic unit for a subject.
type PlannerTx interface {
	RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

type inMemoryTx struct {
	locks   *platformsync.ShardedMutex
	timeout time.Duration
}

// NewInMemoryTx serializes planner writes per subject. Writes are applied
// immediately, so a failed fn is not rolled back.
func NewInMemoryTx() PlannerTx {
	return &inMemoryTx{locks: platformsync.NewShardedMutex(), timeout: defaultTxTimeout}
}

func (t *inMemoryTx) RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.locks.WithLock(subjectID.String(), func() error {
		return fn(ctx)
	})
}
