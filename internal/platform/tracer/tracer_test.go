package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := NewNoop().Start(ctx, SpanScheduleGenerate, String(AttrSubjectID, "s-1"))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(Int(AttrAdded, 3))
	span.End(errors.New("boom"))
}

func TestOTelTracer_WithProvider(t *testing.T) {
	tr := NewOTel(WithProvider(noop.NewTracerProvider()))

	ctx, span := tr.Start(context.Background(), SpanPlannerGenerate, Int(AttrPlanned, 2))
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.SetAttributes(Bool(AttrCacheHit, false))
	span.End(context.Canceled)
}

func TestDurationIsMilliseconds(t *testing.T) {
	assert.Equal(t, attribute.Int64(AttrSweepElapsed, 150), Duration(AttrSweepElapsed, 150*time.Millisecond))
}
