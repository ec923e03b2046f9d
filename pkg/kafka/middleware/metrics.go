package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"barbershop/pkg/kafka"
	"barbershop/pkg/logger"
)

// Metrics counts Kafka operations. Fields are updated atomically.
type Metrics struct {
	MessagesPublished       int64
	MessagesPublishedFailed int64
	PublishDurationTotal    int64 // Nanoseconds

	MessagesConsumed       int64
	MessagesConsumedFailed int64
	ConsumeDurationTotal   int64 // Nanoseconds
}

type Snapshot struct {
	Published          int64
	PublishFailed      int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumeFailed      int64
	AvgConsumeDuration time.Duration
}

var globalMetrics = &Metrics{}

func GetMetrics() *Metrics {
	return globalMetrics
}

func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.MessagesPublished, 0)
	atomic.StoreInt64(&m.MessagesPublishedFailed, 0)
	atomic.StoreInt64(&m.PublishDurationTotal, 0)
	atomic.StoreInt64(&m.MessagesConsumed, 0)
	atomic.StoreInt64(&m.MessagesConsumedFailed, 0)
	atomic.StoreInt64(&m.ConsumeDurationTotal, 0)
}

// GetAvgPublishDuration averages over every attempt, failed ones included.
func (m *Metrics) GetAvgPublishDuration() time.Duration {
	attempts := atomic.LoadInt64(&m.MessagesPublished) + atomic.LoadInt64(&m.MessagesPublishedFailed)
	if attempts == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.PublishDurationTotal) / attempts)
}

func (m *Metrics) GetAvgConsumeDuration() time.Duration {
	attempts := atomic.LoadInt64(&m.MessagesConsumed) + atomic.LoadInt64(&m.MessagesConsumedFailed)
	if attempts == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.ConsumeDurationTotal) / attempts)
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Published:          atomic.LoadInt64(&m.MessagesPublished),
		PublishFailed:      atomic.LoadInt64(&m.MessagesPublishedFailed),
		AvgPublishDuration: m.GetAvgPublishDuration(),
		Consumed:           atomic.LoadInt64(&m.MessagesConsumed),
		ConsumeFailed:      atomic.LoadInt64(&m.MessagesConsumedFailed),
		AvgConsumeDuration: m.GetAvgConsumeDuration(),
	}
}

// LogMetrics is called on shutdown.
func (m *Metrics) LogMetrics(log *logger.Logger) {
	s := m.Snapshot()
	log.Info("kafka metrics",
		"published", s.Published,
		"publish_failed", s.PublishFailed,
		"avg_publish_duration", s.AvgPublishDuration.String(),
		"consumed", s.Consumed,
		"consume_failed", s.ConsumeFailed,
		"avg_consume_duration", s.AvgConsumeDuration.String(),
	)
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()

		err := next(ctx, msg)

		atomic.AddInt64(&m.PublishDurationTotal, int64(time.Since(start)))
		if err != nil {
			atomic.AddInt64(&m.MessagesPublishedFailed, 1)
		} else {
			atomic.AddInt64(&m.MessagesPublished, 1)
		}

		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		atomic.AddInt64(&m.ConsumeDurationTotal, int64(time.Since(start)))
		if err != nil {
			atomic.AddInt64(&m.MessagesConsumedFailed, 1)
		} else {
			atomic.AddInt64(&m.MessagesConsumed, 1)
		}

		return err
	}
}
