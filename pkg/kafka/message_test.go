package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"barbershop/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder_SetsHeaders(t *testing.T) {
	msg := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "PENDING"}).
		WithEventType("booking.created").
		WithSource("bookings").
		WithCorrelationID("req-1").
		Build()

	assert.Equal(t, "booking-1", msg.Key)
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.Equal(t, "bookings", msg.Headers[HeaderSource])
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var payload map[string]string
	require.NoError(t, msg.DecodeValue(&payload))
	assert.Equal(t, "PENDING", payload["status"])
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Empty(t, msg.Value)
}

func TestRetryCount_SurvivesDoubleDigits(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestRetryCount_IgnoresGarbage(t *testing.T) {
	msg := Message{Headers: map[string]string{HeaderRetryCount: "x"}}
	assert.Equal(t, 0, msg.GetRetryCount())
}

func TestWithDLQHeaders_DoesNotMutateOriginal(t *testing.T) {
	msg := NewMessage().WithKey("k").WithRawValue([]byte("{}")).Build()

	dlq := withDLQHeaders(msg, "booking-events", errors.New("boom"))

	assert.Equal(t, "booking-events", dlq.Headers[HeaderOriginalTopic])
	assert.Equal(t, "boom", dlq.Headers[HeaderDLQError])
	_, leaked := msg.Headers[HeaderDLQError]
	assert.False(t, leaked)
}

func TestToKafkaMessage_CopiesHeaders(t *testing.T) {
	msg := NewMessage().WithKey("k").WithRawValue([]byte("{}")).WithEventType("booking.deleted").Build()

	km := toKafkaMessage(msg)

	assert.Equal(t, []byte("k"), km.Key)
	found := false
	for _, h := range km.Headers {
		if h.Key == HeaderEventType {
			found = string(h.Value) == "booking.deleted"
		}
	}
	assert.True(t, found)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("user service", errors.New("503")), ErrorTypeTransient},
		{"wrapped permanent", fmt.Errorf("handler: %w", NewPermanentError("bad json", nil)), ErrorTypePermanent},
		{"refused connection", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ErrorTypeTransient},
		{"dns lookup", fmt.Errorf("user service: %w", &net.DNSError{Err: "no such host", Name: "users"}), ErrorTypeTransient},
		{"retriable broker error", kafka.LeaderNotAvailable, ErrorTypeTransient},
		{"fatal broker error", kafka.TopicAuthorizationFailed, ErrorTypePermanent},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"unknown defaults to permanent", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("timeout", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestConsumer_ProcessMessageRetriesTransient(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 2,
		handler: func(ctx context.Context, msg Message) error {
			calls++
			return NewTransientError("i/o timeout", nil)
		},
		log: logger.Discard(),
	}

	err := c.processMessage(context.Background(), Message{Headers: map[string]string{}})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_ProcessMessageRunsMiddlewareInOrder(t *testing.T) {
	var order []string
	c := &Consumer{
		handler: func(ctx context.Context, msg Message) error {
			order = append(order, "handler")
			return nil
		},
		log: logger.Discard(),
	}
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "first")
		return next(ctx, msg)
	})
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "second")
		return next(ctx, msg)
	})

	require.NoError(t, c.processMessage(context.Background(), Message{}))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestMessageBuilder_SkipsEmptyMetadata(t *testing.T) {
	msg := NewMessage().WithKey("k").WithCorrelationID("").WithEventID("").Build()

	_, ok := msg.GetHeader(HeaderCorrelationID)
	assert.False(t, ok)
	assert.NotEmpty(t, msg.GetEventID())
}
