package errors

import "errors"

var (
	ErrNotFound = errors.New("barber not found")

	ErrInvalidID = errors.New("invalid barber ID format")

	// ErrDuplicateUser is returned when the user already has a barber record.
	ErrDuplicateUser = errors.New("barber already exists for user")
)
