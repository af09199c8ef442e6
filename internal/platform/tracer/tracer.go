// Package tracer wraps span creation for the schedule, planner and catalog
// paths. Services take the Tracer interface; tests pass NewNoop.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span is an active span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
}

// Tracer must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanScheduleGenerate,
//	    tracer.String(tracer.AttrSubjectID, subjectID.String()),
//	)
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute = attribute.KeyValue

func String(key, value string) Attribute {
	return attribute.String(key, value)
}

func Bool(key string, value bool) Attribute {
	return attribute.Bool(key, value)
}

func Int(key string, value int) Attribute {
	return attribute.Int(key, value)
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

const (
	SpanScheduleGenerate    = "schedule.generate"
	SpanScheduleSynchronize = "schedule.synchronize"
	SpanPlannerGenerate     = "planner.generate"
	SpanCatalogList         = "catalog.list"
	SpanStatusSweep         = "schedule.sweep"
)

const (
	AttrSubjectID    = "subject.id"
	AttrVaccineCount = "catalog.vaccine_count"
	AttrAdded        = "schedule.added"
	AttrUpdated      = "schedule.updated"
	AttrRemoved      = "schedule.removed"
	AttrPlanned      = "planner.planned"
	AttrCacheHit     = "cache.hit"
	AttrSweepBatch   = "sweep.batch_size"
	AttrSweepElapsed = "sweep.elapsed_ms"
)
