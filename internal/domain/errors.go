package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for use with errors.Is. Adapters and services wrap these
// with additional context; the HTTP layer maps them to status codes.
var (
	// ErrValidation is returned for malformed input (bad amount, bad enum,
	// bad date). Always recoverable client-side.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds is returned when a withdrawal would drive a
	// reserve's balance negative. Domain error, not a system fault.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrReserveNotFound is returned when a referenced reserve doesn't exist.
	ErrReserveNotFound = errors.New("reserve not found")

	// ErrMovementNotFound is returned when a movement doesn't exist or does
	// not belong to the given reserve.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrSpaceNotFound is returned when a referenced space doesn't exist.
	ErrSpaceNotFound = errors.New("space not found")

	// ErrForbidden is returned when the caller lacks the required role on
	// the owning space.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when no valid principal accompanies
	// the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDuplicateMember is returned when adding a member who already
	// belongs to the space.
	ErrDuplicateMember = errors.New("member already exists in space")
)

// ValidationError carries field-level detail for a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InsufficientFundsError provides details about a balance shortage.
type InsufficientFundsError struct {
	ReserveID uuid.UUID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReserveNotFound) ||
		errors.Is(err, ErrMovementNotFound) ||
		errors.Is(err, ErrSpaceNotFound)
}
