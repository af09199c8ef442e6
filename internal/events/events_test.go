package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vaxtrack/internal/platform/kafka/producer"
	"vaxtrack/pkg/requestcontext"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) ProduceAsync(msg *producer.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func TestNew(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), now), "req-1")

	e := New(ctx, TypeDoseCompleted, "subject-1", map[string]any{"dose_number": 2})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, now, e.OccurredAt)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, TypeDoseCompleted, e.Type)
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("keys by subject and sets headers", func(t *testing.T) {
		prod := new(mockProducer)
		var captured *producer.Message
		prod.On("ProduceAsync", mock.AnythingOfType("*producer.Message")).
			Run(func(args mock.Arguments) { captured = args.Get(0).(*producer.Message) }).
			Return(nil)

		p := NewPublisher(prod, WithTopic("vaxtrack.events"))
		event := New(context.Background(), TypeScheduleGenerated, "subject-1", map[string]any{"added": 3})
		require.NoError(t, p.Publish(context.Background(), event))

		require.NotNil(t, captured)
		assert.Equal(t, "vaxtrack.events", captured.Topic)
		assert.Equal(t, []byte("subject-1"), captured.Key)
		assert.Equal(t, "schedule.generated", captured.Headers["event_type"])
		assert.Equal(t, "subject-1", captured.Headers["aggregate_id"])

		var decoded Event
		require.NoError(t, json.Unmarshal(captured.Value, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.EqualValues(t, 3, decoded.Data["added"])
		prod.AssertExpectations(t)
	})

	t.Run("returns enqueue failures", func(t *testing.T) {
		prod := new(mockProducer)
		prod.On("ProduceAsync", mock.Anything).Return(errors.New("producer is closed"))

		p := NewPublisher(prod)
		err := p.Publish(context.Background(), New(context.Background(), TypePlannerGenerated, "s", nil))
		assert.ErrorContains(t, err, "producer is closed")
	})
}
