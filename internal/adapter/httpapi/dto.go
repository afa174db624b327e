package httpapi

import (
	"encoding/json"
	"time"

	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// DTOs decouple the JSON contract from the domain model. Amounts travel as
// strings to keep decimal precision out of float64 territory; movement dates
// use YYYY-MM-DD, bookkeeping timestamps RFC3339.

const dateLayout = "2006-01-02"

// dataResponse is the envelope for successful responses
type dataResponse struct {
	Data any `json:"data"`
}

// successResponse is the envelope for deletions
type successResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the envelope for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SpaceDTO represents a space in API responses
type SpaceDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OwnerEmail string `json:"ownerEmail"`
	CreatedAt  string `json:"createdAt"`
}

// CreateSpaceRequest is the request to create a space
type CreateSpaceRequest struct {
	Name string `json:"name"`
}

// MemberDTO represents a space membership in API responses
type MemberDTO struct {
	ID        string `json:"id"`
	SpaceID   string `json:"spaceId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// AddMemberRequest is the request to add a member to a space
type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ReserveDTO represents a reserve in API responses
type ReserveDTO struct {
	ID            string  `json:"id"`
	SpaceID       string  `json:"spaceId"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	TargetAmount  *string `json:"targetAmount,omitempty"`
	CurrentAmount string  `json:"currentAmount"`
	Color         string  `json:"color,omitempty"`
	Icon          string  `json:"icon,omitempty"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// CreateReserveRequest is the request to create a reserve
type CreateReserveRequest struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TargetAmount json.Number `json:"targetAmount"`
	Color        string      `json:"color"`
	Icon         string      `json:"icon"`
}

// UpdateReserveRequest is the request to update a reserve's editable fields.
// currentAmount is not accepted here: the cached balance only changes through
// movements.
type UpdateReserveRequest struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TargetAmount json.Number `json:"targetAmount"`
	Color        string      `json:"color"`
	Icon         string      `json:"icon"`
	Active       bool        `json:"active"`
}

// ReserveSummaryDTO is the reserve projection embedded in movement listings
type ReserveSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// MovementDTO represents a movement in API responses
type MovementDTO struct {
	ID          string             `json:"id"`
	ReserveID   string             `json:"reserveId"`
	UserID      string             `json:"userId"`
	Type        string             `json:"type"`
	Amount      string             `json:"amount"`
	Date        string             `json:"date"`
	Description string             `json:"description,omitempty"`
	CreatedAt   string             `json:"createdAt"`
	UpdatedAt   string             `json:"updatedAt"`
	Reserve     *ReserveSummaryDTO `json:"reserve,omitempty"`
}

// CreateMovementRequest is the request to record a movement.
// Amount is a json.Number so that "10.005" reaches validation verbatim
// instead of going through float64.
type CreateMovementRequest struct {
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func toSpaceDTO(s *domain.Space) SpaceDTO {
	return SpaceDTO{
		ID:         s.ID.String(),
		Name:       s.Name,
		OwnerEmail: s.OwnerEmail,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

func toMemberDTO(m *domain.SpaceMember) MemberDTO {
	return MemberDTO{
		ID:        m.ID.String(),
		SpaceID:   m.SpaceID.String(),
		Email:     m.Email,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func toReserveDTO(r *domain.Reserve) ReserveDTO {
	dto := ReserveDTO{
		ID:            r.ID.String(),
		SpaceID:       r.SpaceID.String(),
		Name:          r.Name,
		Description:   r.Description,
		CurrentAmount: r.CurrentAmount.StringFixed(2),
		Color:         r.Color,
		Icon:          r.Icon,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.TargetAmount != nil {
		target := r.TargetAmount.StringFixed(2)
		dto.TargetAmount = &target
	}
	return dto
}

func toMovementDTO(m *domain.Movement) MovementDTO {
	return MovementDTO{
		ID:          m.ID.String(),
		ReserveID:   m.ReserveID.String(),
		UserID:      m.UserID.String(),
		Type:        string(m.Type),
		Amount:      m.Amount.StringFixed(2),
		Date:        m.Date.Format(dateLayout),
		Description: m.Description,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

func toMovementWithReserveDTO(m *domain.MovementWithReserve) MovementDTO {
	dto := toMovementDTO(&m.Movement)
	dto.Reserve = &ReserveSummaryDTO{
		ID:    m.Reserve.ID.String(),
		Name:  m.Reserve.Name,
		Color: m.Reserve.Color,
		Icon:  m.Reserve.Icon,
	}
	return dto
}
