package events

import (
	"context"
	"testing"
	"time"

	"barbershop/pkg/kafka"
	"barbershop/pkg/middleware"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	b := &model.Booking{ID: "b1", Status: model.StatusPending}

	assert.NoError(t, p.Publish(context.Background(), model.NewBookingEvent(model.EventBookingCreated, b, "", model.RoleClient, time.Now())))
	assert.NoError(t, p.Close())
}

func TestNewMessage(t *testing.T) {
	b := &model.Booking{
		ID:      "65f0000000000000000a0001",
		UserID:  "11111111-1111-4111-8111-111111111111",
		Service: model.ServiceSnapshot{Name: "Haircut"},
		Date:    "2026-10-15",
		Time:    "10:00",
		Status:  model.StatusConfirmed,
	}
	event := model.NewBookingEvent(model.EventBookingStatusChanged, b, model.StatusPending, model.RoleBarber, time.Now())
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	msg := newMessage(ctx, event)

	assert.Equal(t, b.ID, msg.Key)
	assert.Equal(t, event.ID, msg.GetEventID())
	assert.Equal(t, model.EventBookingStatusChanged, msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	source, _ := msg.GetHeader(kafka.HeaderSource)
	assert.Equal(t, Source, source)

	var decoded model.BookingEvent
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, model.StatusPending, decoded.FromStatus)
	assert.Equal(t, model.StatusConfirmed, decoded.ToStatus)
	assert.Equal(t, "Haircut", decoded.ServiceName)
}
