package kafka

import (
	"context"
	"testing"

	kafka_config "barbershop/pkg/kafka/config"
	"barbershop/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(&kafka_config.Config{}, logger.Discard(), "booking-events", "")
	assert.Error(t, err)

	_, err = NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}}, logger.Discard(), "", "")
	assert.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	p := &Producer{topic: "booking-events", log: logger.Discard()}

	var seen []Message
	p.Use(func(ctx context.Context, msg Message, next PublishFunc) error {
		seen = append(seen, msg)
		return nil
	})

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "b1"}), ErrEmptyValue)
	assert.Empty(t, seen)

	require.NoError(t, p.Publish(context.Background(), NewMessage().WithKey("b1").WithRawValue([]byte("{}")).Build()))
	require.Len(t, seen, 1)
	assert.Equal(t, "booking-events", seen[0].Topic)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), NewMessage().WithKey("b1").WithRawValue([]byte("{}")).Build()), ErrProducerClosed)
	assert.NoError(t, p.Close())
}
