package tracer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "vaxtrack"

// OTelTracer starts internal-kind spans from a TracerProvider, the global
// one unless WithProvider is given.
type OTelTracer struct {
	tracer trace.Tracer
}

type OTelOption func(*otelConfig)

type otelConfig struct {
	provider trace.TracerProvider
}

func WithProvider(p trace.TracerProvider) OTelOption {
	return func(c *otelConfig) { c.provider = p }
}

func NewOTel(opts ...OTelOption) *OTelTracer {
	cfg := otelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: cfg.provider.Tracer(instrumentationName)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, otelSpan{span}
}

type otelSpan struct{ trace.Span }

// End marks the span failed unless the caller simply went away.
func (s otelSpan) End(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}
