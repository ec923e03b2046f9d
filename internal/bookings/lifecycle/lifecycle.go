// Package lifecycle holds the booking state machine: which transition may be
// applied from which status, and by whom.
package lifecycle

import (
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/model"
)

// relation is the acting user's standing towards a specific booking.
type relation uint8

const (
	owner relation = 1 << iota
	assignedBarber
	admin
)

type rule struct {
	from    model.BookingStatus
	via     model.Transition
	to      model.BookingStatus
	allowed relation
}

var rules = []rule{
	{model.StatusPending, model.TransitionConfirm, model.StatusConfirmed, assignedBarber | admin},
	{model.StatusPending, model.TransitionCancel, model.StatusCancelled, owner | assignedBarber | admin},
	{model.StatusConfirmed, model.TransitionComplete, model.StatusCompleted, assignedBarber | admin},
	{model.StatusConfirmed, model.TransitionCancel, model.StatusCancelled, owner | assignedBarber | admin},
}

func relationOf(b *model.Booking, actor model.Actor) relation {
	var r relation
	if b.OwnedBy(actor.UserID) {
		r |= owner
	}
	if actor.Role == model.RoleBarber && b.AssignedTo(actor.UserID) {
		r |= assignedBarber
	}
	if actor.IsAdmin() {
		r |= admin
	}
	return r
}

// Next returns the status b moves to when actor applies t. It never mutates b.
// Anything outside the rule table, including every transition out of a
// terminal status, yields an INVALID_TRANSITION error.
func Next(b *model.Booking, t model.Transition, actor model.Actor) (model.BookingStatus, error) {
	rel := relationOf(b, actor)
	for _, r := range rules {
		if r.from == b.Status && r.via == t && r.allowed&rel != 0 {
			return r.to, nil
		}
	}
	return "", apperrors.InvalidTransition(b.ID, string(b.Status), string(t), string(actor.Role))
}

// Allowed lists the transitions actor may currently apply to b, in table
// order. Handlers use it to advertise actions next to a booking.
func Allowed(b *model.Booking, actor model.Actor) []model.Transition {
	rel := relationOf(b, actor)
	out := make([]model.Transition, 0, 2)
	for _, r := range rules {
		if r.from == b.Status && r.allowed&rel != 0 {
			out = append(out, r.via)
		}
	}
	return out
}
