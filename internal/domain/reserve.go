package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reserve represents a named savings pocket inside a space.
// CurrentAmount is a cached running balance: it is only ever written by the
// movement engine (see movement.go), never by generic field updates.
type Reserve struct {
	ID            uuid.UUID
	SpaceID       uuid.UUID
	Name          string
	Description   string
	TargetAmount  *decimal.Decimal // optional savings goal, NULL when unset
	CurrentAmount decimal.Decimal
	Color         string
	Icon          string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate ensures the reserve adheres to domain rules
// Returns an error if validation fails
func (r *Reserve) Validate() error {
	name := strings.TrimSpace(r.Name)
	if len(name) < 2 || len(name) > 100 {
		return &ValidationError{Field: "name", Message: "name must be between 2 and 100 characters"}
	}
	if len(r.Description) > 500 {
		return &ValidationError{Field: "description", Message: "description must be at most 500 characters"}
	}
	if r.TargetAmount != nil && r.TargetAmount.IsNegative() {
		return &ValidationError{Field: "targetAmount", Message: "target amount cannot be negative"}
	}
	if r.TargetAmount != nil && r.TargetAmount.GreaterThanOrEqual(maxAmount) {
		return &ValidationError{Field: "targetAmount", Message: "target amount must be less than 100000000"}
	}
	return nil
}

// ApplyUpdate copies the editable fields of in onto r. The cached balance and
// the owning space are deliberately excluded: SpaceID is immutable after
// creation and CurrentAmount belongs to the movement engine.
func (r *Reserve) ApplyUpdate(in *Reserve) {
	r.Name = in.Name
	r.Description = in.Description
	r.TargetAmount = in.TargetAmount
	r.Color = in.Color
	r.Icon = in.Icon
	r.Active = in.Active
}

// ReserveSummary is the lightweight projection of a reserve embedded in
// movement listings.
type ReserveSummary struct {
	ID    uuid.UUID
	Name  string
	Color string
	Icon  string
}
