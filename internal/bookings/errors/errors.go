package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionConflict means the booking exists but no longer has the
	// status and version the write was conditioned on.
	ErrVersionConflict = errors.New("booking was modified concurrently")
)
