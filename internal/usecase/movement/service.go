package movement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// CreateMovementInput represents the input for recording a movement
type CreateMovementInput struct {
	Type        domain.MovementType
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Service drives the reserve ledger. Every mutation resolves the owning
// reserve, checks edit permission on its space, and then delegates the
// ledger write plus the balance update to the repository as one atomic unit.
type Service struct {
	ReserveRepo  domain.ReserveRepository
	MovementRepo domain.MovementRepository
	Access       domain.SpaceAccess
}

// NewService creates a new movement Service instance
func NewService(reserveRepo domain.ReserveRepository, movementRepo domain.MovementRepository, access domain.SpaceAccess) *Service {
	return &Service{
		ReserveRepo:  reserveRepo,
		MovementRepo: movementRepo,
		Access:       access,
	}
}

// CreateMovement records a deposit or withdrawal against a reserve.
// Logic:
//  1. Validate the movement input
//  2. Resolve the reserve (its space drives authorization)
//  3. Check edit permission on the owning space
//  4. Insert the ledger row and apply the balance delta atomically;
//     a withdrawal past zero fails with InsufficientFundsError and
//     writes nothing
func (s *Service) CreateMovement(ctx context.Context, principal domain.Principal, reserveID uuid.UUID, input CreateMovementInput) (*domain.Movement, error) {
	now := time.Now().UTC()

	m := &domain.Movement{
		ID:          uuid.New(),
		ReserveID:   reserveID,
		UserID:      principal.ID,
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        input.Date,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	reserve, err := s.ReserveRepo.GetByID(ctx, reserveID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEdit(ctx, principal, reserve.SpaceID); err != nil {
		return nil, err
	}

	if err := s.MovementRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMovement removes a movement and reverses its effect on the reserve's
// balance. Reversal is the exact inverse of the original application: it is
// never rejected for insufficient funds, and undoing a deposit may leave the
// balance negative when later withdrawals already consumed it.
func (s *Service) DeleteMovement(ctx context.Context, principal domain.Principal, reserveID, movementID uuid.UUID) error {
	reserve, err := s.ReserveRepo.GetByID(ctx, reserveID)
	if err != nil {
		return err
	}

	if err := s.requireEdit(ctx, principal, reserve.SpaceID); err != nil {
		return err
	}

	return s.MovementRepo.Delete(ctx, reserveID, movementID)
}

// ListMovements returns all movements of a reserve, joined with the reserve
// summary, ordered by movement date ascending. The balance is never
// recomputed here: reads always come from the reserve row.
func (s *Service) ListMovements(ctx context.Context, principal domain.Principal, reserveID uuid.UUID) ([]*domain.MovementWithReserve, error) {
	reserve, err := s.ReserveRepo.GetByID(ctx, reserveID)
	if err != nil {
		return nil, err
	}

	ok, err := s.Access.CanViewSpace(ctx, principal, reserve.SpaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	return s.MovementRepo.ListByReserve(ctx, reserveID)
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
