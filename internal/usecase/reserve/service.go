package reserve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// CreateReserveInput represents the input for creating a reserve
type CreateReserveInput struct {
	Name         string
	Description  string
	TargetAmount *decimal.Decimal
	Color        string
	Icon         string
}

// UpdateReserveInput represents the input for updating a reserve's editable
// fields. The cached balance is deliberately absent: it is only ever written
// by the movement engine.
type UpdateReserveInput struct {
	Name         string
	Description  string
	TargetAmount *decimal.Decimal
	Color        string
	Icon         string
	Active       bool
}

// Service handles reserve CRUD operations
type Service struct {
	ReserveRepo domain.ReserveRepository
	SpaceRepo   domain.SpaceRepository
	Access      domain.SpaceAccess
}

// NewService creates a new reserve Service instance
func NewService(reserveRepo domain.ReserveRepository, spaceRepo domain.SpaceRepository, access domain.SpaceAccess) *Service {
	return &Service{
		ReserveRepo: reserveRepo,
		SpaceRepo:   spaceRepo,
		Access:      access,
	}
}

// CreateReserve creates a new reserve in a space with a zero starting balance.
func (s *Service) CreateReserve(ctx context.Context, principal domain.Principal, spaceID uuid.UUID, input CreateReserveInput) (*domain.Reserve, error) {
	if _, err := s.SpaceRepo.GetByID(ctx, spaceID); err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, principal, spaceID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reserve := &domain.Reserve{
		ID:            uuid.New(),
		SpaceID:       spaceID,
		Name:          input.Name,
		Description:   input.Description,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: decimal.Zero,
		Color:         input.Color,
		Icon:          input.Icon,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := reserve.Validate(); err != nil {
		return nil, err
	}

	if err := s.ReserveRepo.Create(ctx, reserve); err != nil {
		return nil, err
	}
	return reserve, nil
}

// GetReserve retrieves a reserve, requiring view permission on its space.
func (s *Service) GetReserve(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Reserve, error) {
	reserve, err := s.ReserveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, principal, reserve.SpaceID); err != nil {
		return nil, err
	}
	return reserve, nil
}

// ListReserves retrieves all reserves of a space, requiring view permission.
func (s *Service) ListReserves(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) ([]*domain.Reserve, error) {
	if _, err := s.SpaceRepo.GetByID(ctx, spaceID); err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, principal, spaceID); err != nil {
		return nil, err
	}
	return s.ReserveRepo.ListBySpace(ctx, spaceID)
}

// UpdateReserve updates the editable fields of a reserve. SpaceID and
// CurrentAmount are never touched.
func (s *Service) UpdateReserve(ctx context.Context, principal domain.Principal, id uuid.UUID, input UpdateReserveInput) (*domain.Reserve, error) {
	reserve, err := s.ReserveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, principal, reserve.SpaceID); err != nil {
		return nil, err
	}

	reserve.ApplyUpdate(&domain.Reserve{
		Name:         input.Name,
		Description:  input.Description,
		TargetAmount: input.TargetAmount,
		Color:        input.Color,
		Icon:         input.Icon,
		Active:       input.Active,
	})
	reserve.UpdatedAt = time.Now().UTC()

	if err := reserve.Validate(); err != nil {
		return nil, err
	}
	if err := s.ReserveRepo.Update(ctx, reserve); err != nil {
		return nil, err
	}
	return reserve, nil
}

// DeleteReserve removes a reserve; its movements cascade at the storage level.
func (s *Service) DeleteReserve(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	reserve, err := s.ReserveRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireEdit(ctx, principal, reserve.SpaceID); err != nil {
		return err
	}
	return s.ReserveRepo.Delete(ctx, id)
}

func (s *Service) requireEdit(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) error {
	ok, err := s.Access.CanEditSpace(ctx, principal, spaceID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) requireView(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) error {
	ok, err := s.Access.CanViewSpace(ctx, principal, spaceID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
