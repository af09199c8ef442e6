// Package events publishes domain events about schedules and planners.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vaxtrack/internal/platform/kafka/producer"
	"vaxtrack/internal/platform/metrics"
	"vaxtrack/pkg/requestcontext"
)

// Type names a domain event.
type Type string

const (
	TypeScheduleGenerated    Type = "schedule.generated"
	TypeScheduleSynchronized Type = "schedule.synchronized"
	TypeDoseCompleted        Type = "dose.completed"
	TypePlannerGenerated     Type = "planner.generated"
)

// Event is the JSON payload written to the events topic.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	SubjectID  string         `json:"subject_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a fresh ID and the request-scoped time.
func New(ctx context.Context, eventType Type, subjectID string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		SubjectID:  subjectID,
		OccurredAt: requestcontext.Now(ctx).UTC(),
		RequestID:  requestcontext.RequestID(ctx),
		Data:       data,
	}
}

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	ProduceAsync(msg *producer.Message) error
}

// Publisher writes events to Kafka keyed by subject, so one subject's events
// stay ordered within a partition.
type Publisher struct {
	producer Producer
	topic    string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Publisher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTopic overrides the producer's default topic.
func WithTopic(topic string) Option {
	return func(p *Publisher) { p.topic = topic }
}

func NewPublisher(prod Producer, opts ...Option) *Publisher {
	p := &Publisher{producer: prod, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish enqueues the event. Delivery is asynchronous; only encoding and
// enqueue failures are returned.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.metrics.IncEventPublishError(string(event.Type))
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.SubjectID),
		Value: payload,
		Headers: map[string]string{
			"aggregate_type": "subject",
			"aggregate_id":   event.SubjectID,
			"event_type":     string(event.Type),
		},
	}
	if err := p.producer.ProduceAsync(msg); err != nil {
		p.metrics.IncEventPublishError(string(event.Type))
		p.logger.WarnContext(ctx, "event publish failed",
			"event_type", string(event.Type),
			"subject_id", event.SubjectID,
			"error", err,
		)
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	p.metrics.IncEventPublished(string(event.Type))
	return nil
}
