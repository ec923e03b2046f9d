// Package notifications turns booking events into messages for the people
// involved and hands them to a Sender.
package notifications

import (
	"fmt"
	"strings"

	"barbershop/pkg/model"
)

type Kind string

const (
	KindBookingCreated   Kind = "booking_created"
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
	KindBookingCompleted Kind = "booking_completed"
	KindBarberAssigned   Kind = "barber_assigned"
)

type Notification struct {
	Kind      Kind
	BookingID string
	UserID    string
	To        string
	Subject   string
	Body      string
}

// draft is a notification still missing its resolved recipient.
type draft struct {
	kind   Kind
	userID string
	render func(name string) (subject, body string)
}

// plan lists what should be sent for event. Deleted bookings and status
// changes without a client-facing meaning produce nothing.
func plan(event model.BookingEvent) []draft {
	var drafts []draft

	switch event.Type {
	case model.EventBookingCreated:
		drafts = append(drafts, draft{KindBookingCreated, event.UserID, func(name string) (string, string) {
			return "Booking received", clientBody(name, "We received your booking.", event)
		}})
		if event.BarberUserID != "" {
			drafts = append(drafts, draft{KindBarberAssigned, event.BarberUserID, func(name string) (string, string) {
				return "New booking assigned", clientBody(name, "A new booking was assigned to you.", event)
			}})
		}
	case model.EventBookingStatusChanged:
		switch event.ToStatus {
		case model.StatusConfirmed:
			drafts = append(drafts, draft{KindBookingConfirmed, event.UserID, func(name string) (string, string) {
				return "Booking confirmed", clientBody(name, "Your booking is confirmed. See you soon.", event)
			}})
		case model.StatusCancelled:
			drafts = append(drafts, draft{KindBookingCancelled, event.UserID, func(name string) (string, string) {
				return "Booking cancelled", clientBody(name, "Your booking was cancelled.", event)
			}})
		case model.StatusCompleted:
			drafts = append(drafts, draft{KindBookingCompleted, event.UserID, func(name string) (string, string) {
				return "Thanks for your visit", clientBody(name, "Your booking is complete. Thanks for coming in.", event)
			}})
		}
	}

	return drafts
}

func clientBody(name, headline string, event model.BookingEvent) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n", name, headline)
	fmt.Fprintf(&b, "Service: %s\n", event.ServiceName)
	fmt.Fprintf(&b, "Date: %s\n", event.Date)
	fmt.Fprintf(&b, "Time: %s\n", event.Time)
	if event.BarberName != "" {
		fmt.Fprintf(&b, "Barber: %s\n", event.BarberName)
	}
	b.WriteString("\nThe BarberShop team\n")
	return b.String()
}
