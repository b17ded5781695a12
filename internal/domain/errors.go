package domain

import "errors"

var (
	// ErrNotFound is returned when no order exists for the requested ID.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden is returned when the requester is not the order owner.
	ErrForbidden = errors.New("order does not belong to requester")

	// ErrInvalidStatus is returned for a status outside the enumeration.
	ErrInvalidStatus = errors.New("invalid order status")
)

// ValidationError rejects a malformed or inconsistent create request
// before any write happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}
