package space

import (
	"context"

	"github.com/google/uuid"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// Gate implements domain.SpaceAccess by resolving the principal's membership
// role. Owners and editors may mutate; viewers may only read; non-members
// have no access at all.
type Gate struct {
	SpaceRepo domain.SpaceRepository
}

// NewGate creates a new access Gate instance
func NewGate(spaceRepo domain.SpaceRepository) *Gate {
	return &Gate{SpaceRepo: spaceRepo}
}

// CanEditSpace reports whether the principal may mutate data in the space.
func (g *Gate) CanEditSpace(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) (bool, error) {
	role, err := g.SpaceRepo.GetMemberRole(ctx, spaceID, principal.Email)
	if err != nil {
		return false, err
	}
	return role.CanEdit(), nil
}

// CanViewSpace reports whether the principal may read data in the space.
func (g *Gate) CanViewSpace(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) (bool, error) {
	role, err := g.SpaceRepo.GetMemberRole(ctx, spaceID, principal.Email)
	if err != nil {
		return false, err
	}
	return role.CanView(), nil
}
