package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"barbershop/pkg/kafka"
	"barbershop/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetricsProducerMiddleware_CountsOutcomes(t *testing.T) {
	m := &Metrics{}
	mw := MetricsProducerMiddleware(m)
	msg := kafka.NewMessage().WithKey("b1").WithValue(map[string]string{"a": "b"}).Build()

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("broker down") }

	assert.NoError(t, mw(context.Background(), msg, ok))
	assert.NoError(t, mw(context.Background(), msg, ok))
	assert.Error(t, mw(context.Background(), msg, fail))

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Published)
	assert.Equal(t, int64(1), s.PublishFailed)
	assert.Equal(t, int64(0), s.Consumed)
}

func TestMetricsConsumerMiddleware_CountsOutcomes(t *testing.T) {
	m := &Metrics{}
	mw := MetricsConsumerMiddleware(m)

	err := mw(context.Background(), kafka.Message{}, func(ctx context.Context, msg kafka.Message) error {
		return kafka.NewPermanentError("bad payload", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, int64(1), m.Snapshot().ConsumeFailed)

	m.Reset()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	log := logger.Discard()
	want := errors.New("boom")

	consumerErr := LoggingConsumerMiddleware(log)(context.Background(), kafka.Message{}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})
	producerErr := LoggingProducerMiddleware(log)(context.Background(), kafka.Message{}, func(ctx context.Context, msg kafka.Message) error {
		return nil
	})

	assert.ErrorIs(t, consumerErr, want)
	assert.NoError(t, producerErr)
}
