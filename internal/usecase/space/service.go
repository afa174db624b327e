package space

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// Service handles space and membership operations
type Service struct {
	SpaceRepo domain.SpaceRepository
}

// NewService creates a new space Service instance
func NewService(spaceRepo domain.SpaceRepository) *Service {
	return &Service{SpaceRepo: spaceRepo}
}

// CreateSpace creates a new space owned by the principal.
// The principal gets an owner membership row in the same atomic unit.
func (s *Service) CreateSpace(ctx context.Context, principal domain.Principal, name string) (*domain.Space, error) {
	now := time.Now().UTC()

	space := &domain.Space{
		ID:         uuid.New(),
		Name:       name,
		OwnerEmail: principal.Email,
		CreatedAt:  now,
	}
	if err := space.Validate(); err != nil {
		return nil, err
	}

	owner := &domain.SpaceMember{
		ID:        uuid.New(),
		SpaceID:   space.ID,
		Email:     principal.Email,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}

	if err := s.SpaceRepo.Create(ctx, space, owner); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}
	return space, nil
}

// ListSpaces returns all spaces the principal is a member of.
func (s *Service) ListSpaces(ctx context.Context, principal domain.Principal) ([]*domain.Space, error) {
	return s.SpaceRepo.ListByMember(ctx, principal.Email)
}

// AddMember adds a member with the given role to a space.
// Only the space owner may manage memberships, and only editor/viewer roles
// can be granted (ownership is fixed at space creation).
func (s *Service) AddMember(ctx context.Context, principal domain.Principal, spaceID uuid.UUID, email string, role domain.Role) (*domain.SpaceMember, error) {
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	if role != domain.RoleEditor && role != domain.RoleViewer {
		return nil, &domain.ValidationError{Field: "role", Message: "role must be editor or viewer"}
	}

	space, err := s.SpaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerEmail != principal.Email {
		return nil, domain.ErrForbidden
	}

	member := &domain.SpaceMember{
		ID:        uuid.New(),
		SpaceID:   spaceID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SpaceRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}
