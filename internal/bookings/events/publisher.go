// Package events announces booking changes to other services.
package events

import (
	"context"

	"barbershop/pkg/kafka"
	"barbershop/pkg/middleware"
	"barbershop/pkg/model"
)

const Source = "bookings"

// Publisher delivers booking events. Callers treat delivery as best-effort.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

// KafkaPublisher keys every event by booking id so a booking's events stay
// ordered within one partition.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	return p.producer.Publish(ctx, newMessage(ctx, event))
}

func newMessage(ctx context.Context, event model.BookingEvent) kafka.Message {
	return kafka.NewMessage().
		WithKey(event.BookingID).
		WithEventID(event.ID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(Source).
		WithSchemaVersion("1").
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.BookingEvent) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
