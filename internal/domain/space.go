package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a member's permission level inside a space
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanEdit reports whether the role allows mutating data in the space.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// CanView reports whether the role allows reading data in the space.
func (r Role) CanView() bool {
	return r == RoleOwner || r == RoleEditor || r == RoleViewer
}

// Space represents a shared workspace grouping reserves and their movements
type Space struct {
	ID         uuid.UUID
	Name       string
	OwnerEmail string
	CreatedAt  time.Time
}

// Validate ensures the space adheres to domain rules
// Returns an error if validation fails
func (s *Space) Validate() error {
	name := strings.TrimSpace(s.Name)
	if len(name) < 2 || len(name) > 100 {
		return &ValidationError{Field: "name", Message: "name must be between 2 and 100 characters"}
	}
	if s.OwnerEmail == "" {
		return &ValidationError{Field: "ownerEmail", Message: "owner email is required"}
	}
	return nil
}

// SpaceMember links a user (by email) to a space with a role.
// The space owner always has an owner membership row, created with the space.
type SpaceMember struct {
	ID        uuid.UUID
	SpaceID   uuid.UUID
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Principal is the authenticated caller, as supplied by the identity layer.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// SpaceAccess answers permission questions for a principal against a space.
// Every mutation in the reserve/movement services goes through this gate
// before touching any data.
type SpaceAccess interface {
	// CanEditSpace reports whether the principal may mutate data in the space.
	CanEditSpace(ctx context.Context, principal Principal, spaceID uuid.UUID) (bool, error)

	// CanViewSpace reports whether the principal may read data in the space.
	CanViewSpace(ctx context.Context, principal Principal, spaceID uuid.UUID) (bool, error)
}
