package validator

import (
	"errors"
	"testing"
	"time"

	"barbershop/pkg/config"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	saoPaulo, _ = time.LoadLocation("America/Sao_Paulo")
	// Wednesday 2026-10-14 10:00 local.
	now = time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)
)

func defaultPolicy() SlotPolicy {
	return SlotPolicy{
		Location:     saoPaulo,
		Open:         9 * 60,
		Close:        18 * 60,
		SlotMinutes:  30,
		MinDaysAhead: 1,
	}
}

func newValidator(p SlotPolicy) *BookingValidator {
	return NewBookingValidator(logger.Discard(), p)
}

func validRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		ServiceID: "65f000000000000000000001",
		Date:      "2026-10-15",
		Time:      "10:30",
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidate_ValidRequest(t *testing.T) {
	assert.NoError(t, newValidator(defaultPolicy()).Validate(validRequest(), now))
}

func TestValidate_Shape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.CreateBookingRequest)
		field  string
	}{
		{"missing service", func(r *model.CreateBookingRequest) { r.ServiceID = "" }, "ServiceID"},
		{"bad service id", func(r *model.CreateBookingRequest) { r.ServiceID = "haircut" }, "ServiceID"},
		{"bad date", func(r *model.CreateBookingRequest) { r.Date = "15/10/2026" }, "Date"},
		{"bad time", func(r *model.CreateBookingRequest) { r.Time = "10h30" }, "Time"},
		{"bad barber id", func(r *model.CreateBookingRequest) { r.BarberID = "ana" }, "BarberID"},
		{"notes too long", func(r *model.CreateBookingRequest) { r.Notes = string(make([]byte, 501)) }, "Notes"},
	}

	v := newValidator(defaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req, now)

			require.Error(t, err)
			assert.Contains(t, fields(t, err), tt.field)
		})
	}
}

func TestCheckSlot(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		ok    bool
	}{
		{"tomorrow at opening", "2026-10-15", "09:00", true},
		{"tomorrow last slot", "2026-10-15", "17:30", true},
		{"closing time is excluded", "2026-10-15", "18:00", false},
		{"before opening", "2026-10-15", "08:30", false},
		{"off grid", "2026-10-15", "10:15", false},
		{"same day later today", "2026-10-14", "16:00", false},
		{"past date", "2026-10-01", "10:00", false},
		{"far future", "2027-01-04", "12:00", true},
	}

	v := newValidator(defaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckSlot(tt.date, tt.clock, now)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckSlot_SameDayAllowedWithZeroLeadTime(t *testing.T) {
	p := defaultPolicy()
	p.MinDaysAhead = 0
	v := newValidator(p)

	assert.NoError(t, v.CheckSlot("2026-10-14", "16:00", now))
	// 10:00 local is now, not strictly after it.
	assert.Error(t, v.CheckSlot("2026-10-14", "10:00", now))
	assert.Error(t, v.CheckSlot("2026-10-14", "09:30", now))
}

func TestCheckSlot_DateIsLocalToShop(t *testing.T) {
	// 23:30 local on the 14th is already the 15th in UTC.
	lateEvening := time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC)
	v := newValidator(defaultPolicy())

	assert.NoError(t, v.CheckSlot("2026-10-15", "09:00", lateEvening))
}

func TestCheckSlot_ReportsEveryProblem(t *testing.T) {
	err := newValidator(defaultPolicy()).CheckSlot("2026-10-01", "20:15", now)
	assert.Equal(t, []string{"BookingTime", "BookingDate"}, fields(t, err))
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := &config.Config{
		BookingOpenTime:     "08:30",
		BookingCloseTime:    "20:00",
		BookingSlotMinutes:  15,
		BookingMinDaysAhead: 2,
		BookingTimeZone:     "UTC",
	}

	p := PolicyFromConfig(cfg)

	assert.Equal(t, 510, p.Open)
	assert.Equal(t, 1200, p.Close)
	assert.Equal(t, 15, p.SlotMinutes)
	assert.Equal(t, 2, p.MinDaysAhead)
	assert.Equal(t, time.UTC, p.Location)
}

func TestValidate_TimeMustBeZeroPadded(t *testing.T) {
	v := newValidator(defaultPolicy())

	req := validRequest()
	req.Time = "9:30"
	err := v.Validate(req, now)
	require.Error(t, err)
	assert.Equal(t, []string{"BookingTime"}, fields(t, err))

	req.Time = "09:30"
	assert.NoError(t, v.Validate(req, now))
}
