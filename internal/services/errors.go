package services

import "errors"

// Sentinel errors surfaced by the booking and settings services. Handlers
// map these onto HTTP statuses; everything else is treated as an unexpected
// persistence failure.
var (
	// ErrBookingClosed is returned when the admin has disabled booking.
	ErrBookingClosed = errors.New("booking is currently closed")

	// ErrNoSeatsAvailable is returned when a route's seat counter is
	// exhausted. No booking row is created in that case.
	ErrNoSeatsAvailable = errors.New("no seats available for this route")
)
