package model

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusConfirmed, false},
		{StatusCancelled, true},
		{StatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.IsValid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, ok := ParseBookingStatus(" cancelled ")
	assert.True(t, ok)
	assert.Equal(t, StatusCancelled, status)

	_, ok = ParseBookingStatus("NO_SHOW")
	assert.False(t, ok)
}

func TestParseTransition(t *testing.T) {
	for _, name := range []string{"confirm", "CANCEL", "Complete"} {
		_, ok := ParseTransition(name)
		assert.True(t, ok, name)
	}
	_, ok := ParseTransition("reopen")
	assert.False(t, ok)
}

func TestParseScope(t *testing.T) {
	scope, ok := ParseScope("")
	assert.True(t, ok)
	assert.Equal(t, ScopeOwn, scope)

	scope, ok = ParseScope("ALL")
	assert.True(t, ok)
	assert.Equal(t, ScopeAll, scope)

	_, ok = ParseScope("team")
	assert.False(t, ok)
}

func TestBooking_Ownership(t *testing.T) {
	b := &Booking{UserID: "client-1", BarberUserID: "barber-1", BarberID: "b1"}

	assert.True(t, b.OwnedBy("client-1"))
	assert.False(t, b.OwnedBy("barber-1"))
	assert.True(t, b.AssignedTo("barber-1"))
	assert.False(t, b.AssignedTo(""))
	assert.True(t, b.IsAssigned())

	unassigned := &Booking{UserID: "client-1"}
	assert.False(t, unassigned.IsAssigned())
	assert.False(t, unassigned.AssignedTo(""))
}

func TestCreateBookingRequest_Tags(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name  string
		req   CreateBookingRequest
		valid bool
	}{
		{
			name:  "valid without barber",
			req:   CreateBookingRequest{ServiceID: "507f1f77bcf86cd799439011", Date: "2030-05-10", Time: "10:30"},
			valid: true,
		},
		{
			name:  "bad service id",
			req:   CreateBookingRequest{ServiceID: "svc-1", Date: "2030-05-10", Time: "10:30"},
			valid: false,
		},
		{
			name:  "bad date layout",
			req:   CreateBookingRequest{ServiceID: "507f1f77bcf86cd799439011", Date: "10/05/2030", Time: "10:30"},
			valid: false,
		},
		{
			name:  "bad time layout",
			req:   CreateBookingRequest{ServiceID: "507f1f77bcf86cd799439011", Date: "2030-05-10", Time: "25:00"},
			valid: false,
		},
		{
			name:  "bad barber id",
			req:   CreateBookingRequest{ServiceID: "507f1f77bcf86cd799439011", Date: "2030-05-10", Time: "10:30", BarberID: "x"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			assert.Equal(t, tt.valid, err == nil, "error: %v", err)
		})
	}
}
