package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction of a reserve movement
type MovementType string

const (
	MovementDeposit  MovementType = "deposit"
	MovementWithdraw MovementType = "withdraw"
)

// Movement represents a single deposit or withdrawal event against a
// reserve's ledger.
//
// Amount is always a positive magnitude; the direction is carried exclusively
// by Type. Movements are never edited in place: a correction is a delete
// followed by a new movement.
type Movement struct {
	ID          uuid.UUID
	ReserveID   uuid.UUID
	UserID      uuid.UUID
	Type        MovementType
	Amount      decimal.Decimal // ABSOLUTE VALUE (Always Positive)
	Date        time.Time       // user-assigned effective date, may differ from CreatedAt
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// maxAmount is the exclusive upper bound imposed by the NUMERIC(10, 2)
// amount columns.
var maxAmount = decimal.New(1, 8)

// Validate ensures the movement adheres to domain rules
// Returns an error if validation fails
func (m *Movement) Validate() error {
	if m.Type != MovementDeposit && m.Type != MovementWithdraw {
		return &ValidationError{Field: "type", Message: "type must be deposit or withdraw"}
	}
	if !m.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	// Amounts are persisted with two decimal places; extra value precision is
	// rejected rather than silently truncated. The comparison is by value, so
	// "10.000" passes and "10.005" does not.
	if !m.Amount.Equal(m.Amount.Truncate(2)) {
		return &ValidationError{Field: "amount", Message: "amount must have at most 2 decimal places"}
	}
	if m.Amount.GreaterThanOrEqual(maxAmount) {
		return &ValidationError{Field: "amount", Message: "amount must be less than 100000000"}
	}
	if m.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if len(m.Description) > 500 {
		return &ValidationError{Field: "description", Message: "description must be at most 500 characters"}
	}
	return nil
}

// Delta returns the signed effect of the movement on its reserve's balance:
// +Amount for a deposit, -Amount for a withdrawal.
func (m *Movement) Delta() decimal.Decimal {
	if m.Type == MovementWithdraw {
		return m.Amount.Neg()
	}
	return m.Amount
}

// NextBalance computes the reserve balance after applying m to current.
// A withdrawal that would drive the balance negative fails with
// InsufficientFundsError and must leave the reserve untouched.
func NextBalance(current decimal.Decimal, m *Movement) (decimal.Decimal, error) {
	next := current.Add(m.Delta())
	if m.Type == MovementWithdraw && next.IsNegative() {
		return decimal.Decimal{}, &InsufficientFundsError{
			ReserveID: m.ReserveID,
			Available: current,
			Requested: m.Amount,
		}
	}
	return next, nil
}

// ReversedBalance computes the reserve balance after undoing m's effect.
// Reversal is the exact inverse of the original application and never fails:
// undoing a deposit can legitimately leave the balance negative when later
// withdrawals already consumed it.
func ReversedBalance(current decimal.Decimal, m *Movement) decimal.Decimal {
	return current.Sub(m.Delta())
}

// MovementWithReserve is a movement joined with a summary of its owning
// reserve, as returned by movement listings.
type MovementWithReserve struct {
	Movement
	Reserve ReserveSummary
}
