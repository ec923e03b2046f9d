package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"barbershop/pkg/config"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// SlotPolicy describes which (date, time) pairs can be booked. Times are
// civil values in Location.
type SlotPolicy struct {
	Location     *time.Location
	Open         int // minutes after midnight, inclusive
	Close        int // minutes after midnight, exclusive
	SlotMinutes  int
	MinDaysAhead int
}

func PolicyFromConfig(cfg *config.Config) SlotPolicy {
	return SlotPolicy{
		Location:     cfg.Location(),
		Open:         clockMinutes(cfg.BookingOpenTime),
		Close:        clockMinutes(cfg.BookingCloseTime),
		SlotMinutes:  cfg.BookingSlotMinutes,
		MinDaysAhead: cfg.BookingMinDaysAhead,
	}
}

func clockMinutes(hhmm string) int {
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

type BookingValidator struct {
	validate *validator.Validate
	policy   SlotPolicy
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, policy SlotPolicy) *BookingValidator {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if policy.SlotMinutes <= 0 {
		policy.SlotMinutes = 30
	}

	log.Info("Booking validator initialized successfully",
		"slot_minutes", policy.SlotMinutes,
		"min_days_ahead", policy.MinDaysAhead,
		"time_zone", policy.Location.String(),
	)

	return &BookingValidator{
		validate: validator.New(),
		policy:   policy,
		logger:   log,
	}
}

// Validate checks the request shape and then the slot policy against now.
func (v *BookingValidator) Validate(req *model.CreateBookingRequest, now time.Time) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.CheckSlot(req.Date, req.Time, now)
}

// CheckSlot enforces the half-hour grid inside opening hours, a start strictly
// after now and the minimum lead time in whole days.
func (v *BookingValidator) CheckSlot(date, clock string, now time.Time) error {
	p := v.policy
	loc := p.Location

	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return ValidationErrors{{Field: "BookingDate", Message: "booking_date must be in YYYY-MM-DD format"}}
	}
	// Stored times are compared as strings, so only the zero-padded form is accepted.
	at, err := time.Parse(timeLayout, clock)
	if err != nil || at.Format(timeLayout) != clock {
		return ValidationErrors{{Field: "BookingTime", Message: "booking_time must be in HH:MM format"}}
	}

	var errs ValidationErrors

	minutes := at.Hour()*60 + at.Minute()
	if minutes < p.Open || minutes >= p.Close {
		errs = append(errs, ValidationError{
			Field:   "BookingTime",
			Message: fmt.Sprintf("booking_time must be between %s and %s", formatMinutes(p.Open), formatMinutes(p.Close)),
		})
	} else if (minutes-p.Open)%p.SlotMinutes != 0 {
		errs = append(errs, ValidationError{
			Field:   "BookingTime",
			Message: fmt.Sprintf("booking_time must fall on a %d minute slot", p.SlotMinutes),
		})
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	earliest := today.AddDate(0, 0, p.MinDaysAhead)
	start := time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, loc)

	switch {
	case !start.After(now):
		errs = append(errs, ValidationError{
			Field:   "BookingDate",
			Message: "booking must be in the future",
		})
	case day.Before(earliest):
		errs = append(errs, ValidationError{
			Field:   "BookingDate",
			Message: fmt.Sprintf("booking_date must be on or after %s", earliest.Format(dateLayout)),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must match the layout %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
