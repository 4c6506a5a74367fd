package domain

import "errors"

// Data errors. Terminal, surfaced to manual review, never retried.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrMissingCoordinates = errors.New("order has no valid coordinates")
	ErrCourierNotFound    = errors.New("courier not found")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrInvalidCapacity    = errors.New("capacity must be positive")
)

// Contention and state errors.
var (
	ErrAssignmentActive   = errors.New("order already has an active assignment")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrStaleTransition    = errors.New("assignment is no longer in the expected status")
	ErrCourierUnavailable = errors.New("courier is not available")
	ErrShiftClosed        = errors.New("courier shift is closed")
	ErrNotReserved        = errors.New("courier has no reserved slot")
	ErrNoActiveAssignment = errors.New("order has no active assignment")
	ErrNotAssignedCourier = errors.New("courier does not hold this assignment")
	ErrOfferExpired       = errors.New("offer expired")
	ErrInvalidTransition  = errors.New("transition not allowed from current status")
	ErrCourierIneligible  = errors.New("requested courier is not eligible")
	ErrForbidden          = errors.New("operation not permitted")
)

// IsDataError reports whether err should go to manual review instead of being retried.
func IsDataError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrMissingCoordinates) ||
		errors.Is(err, ErrCourierNotFound)
}
