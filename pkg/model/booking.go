package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

var AllStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition can leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	return status, status.IsValid()
}

type Transition string

const (
	TransitionConfirm  Transition = "confirm"
	TransitionCancel   Transition = "cancel"
	TransitionComplete Transition = "complete"
)

func ParseTransition(s string) (Transition, bool) {
	t := Transition(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TransitionConfirm, TransitionCancel, TransitionComplete:
		return t, true
	}
	return t, false
}

// ServiceSnapshot freezes the catalog entry at booking time. Later catalog
// edits never reach an existing booking.
type ServiceSnapshot struct {
	ID              string          `json:"id" bson:"id"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes" bson:"duration_minutes"`
	Price           decimal.Decimal `json:"price" bson:"price"`
}

type Booking struct {
	ID           string          `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       string          `json:"user_id" bson:"user_id"`
	ClientName   string          `json:"client_name,omitempty" bson:"client_name,omitempty"`
	BarberID     string          `json:"barber_id,omitempty" bson:"barber_id,omitempty"`
	BarberUserID string          `json:"barber_user_id,omitempty" bson:"barber_user_id,omitempty"`
	BarberName   string          `json:"barber_name,omitempty" bson:"barber_name,omitempty"`
	Service      ServiceSnapshot `json:"service" bson:"service"`
	Date         string          `json:"booking_date" bson:"booking_date"`
	Time         string          `json:"booking_time" bson:"booking_time"`
	Status       BookingStatus   `json:"status" bson:"status"`
	Notes        string          `json:"notes,omitempty" bson:"notes,omitempty"`
	Version      int64           `json:"version" bson:"version"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsAssigned() bool {
	return b.BarberID != ""
}

// AssignedTo reports whether the barber identified by userID is assigned to the booking.
func (b *Booking) AssignedTo(userID string) bool {
	return b.BarberUserID != "" && b.BarberUserID == userID
}

func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID != "" && b.UserID == userID
}

type CreateBookingRequest struct {
	ServiceID string `json:"service_id" validate:"required,mongodb"`
	Date      string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"booking_time" validate:"required,datetime=15:04"`
	BarberID  string `json:"barber_id,omitempty" validate:"omitempty,mongodb"`
	Notes     string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
