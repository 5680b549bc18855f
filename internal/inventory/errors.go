package inventory

import "errors"

// Sentinel errors surfaced by the reservation service. Handlers map
// these to HTTP statuses with errors.Is.
var (
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInsufficientStock   = errors.New("insufficient available stock")
	ErrAlreadyTerminal     = errors.New("reservation is already in a terminal state")
)
