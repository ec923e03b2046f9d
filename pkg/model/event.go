package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
)

type BookingEvent struct {
	ID           string        `json:"event_id"`
	Type         string        `json:"type"`
	BookingID    string        `json:"booking_id"`
	UserID       string        `json:"user_id"`
	BarberUserID string        `json:"barber_user_id,omitempty"`
	BarberName   string        `json:"barber_name,omitempty"`
	ServiceName  string        `json:"service_name"`
	Date         string        `json:"booking_date"`
	Time         string        `json:"booking_time"`
	FromStatus   BookingStatus `json:"from_status,omitempty"`
	ToStatus     BookingStatus `json:"to_status"`
	ActorRole    Role          `json:"actor_role,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking, from BookingStatus, actor Role, at time.Time) BookingEvent {
	return BookingEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		BookingID:    b.ID,
		UserID:       b.UserID,
		BarberUserID: b.BarberUserID,
		BarberName:   b.BarberName,
		ServiceName:  b.Service.Name,
		Date:         b.Date,
		Time:         b.Time,
		FromStatus:   from,
		ToStatus:     b.Status,
		ActorRole:    actor,
		OccurredAt:   at,
	}
}
