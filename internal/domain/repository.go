package domain

import (
	"context"

	"github.com/google/uuid"
)

// SpaceRepository defines the interface for space persistence operations
type SpaceRepository interface {
	// Create persists a new space together with its owner membership row,
	// as a single atomic unit.
	Create(ctx context.Context, space *Space, owner *SpaceMember) error

	// GetByID retrieves a space by its ID.
	// Returns ErrSpaceNotFound if it doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Space, error)

	// ListByMember retrieves all spaces the given email is a member of,
	// ordered by creation time.
	ListByMember(ctx context.Context, email string) ([]*Space, error)

	// AddMember adds a member to a space.
	// Returns ErrDuplicateMember if the email already belongs to the space.
	AddMember(ctx context.Context, member *SpaceMember) error

	// GetMemberRole returns the role of email within the space, or an
	// empty role with a nil error when no membership exists.
	GetMemberRole(ctx context.Context, spaceID uuid.UUID, email string) (Role, error)
}

// ReserveRepository defines the interface for reserve persistence operations
type ReserveRepository interface {
	// Create persists a new reserve.
	Create(ctx context.Context, reserve *Reserve) error

	// GetByID retrieves a reserve by its ID.
	// Returns ErrReserveNotFound if it doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Reserve, error)

	// ListBySpace retrieves all reserves in a space, ordered by creation time.
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]*Reserve, error)

	// Update persists the editable fields of a reserve (name, description,
	// target, color, icon, active). It must never write CurrentAmount:
	// the cached balance is owned by MovementRepository.
	Update(ctx context.Context, reserve *Reserve) error

	// Delete removes a reserve. Its movements cascade at the storage level.
	// Returns ErrReserveNotFound if it doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementRepository defines the interface for movement persistence and is
// the only code path allowed to write a reserve's cached balance.
type MovementRepository interface {
	// Create inserts the movement row and applies its effect to the owning
	// reserve's CurrentAmount as one atomic unit. The balance is re-read
	// under the storage engine's write lock before computing the new value,
	// so concurrent movements against the same reserve serialize instead of
	// clobbering each other. Returns InsufficientFundsError (and writes
	// nothing) when a withdrawal would drive the balance negative, and
	// ErrReserveNotFound when the reserve doesn't exist.
	Create(ctx context.Context, movement *Movement) error

	// Delete removes the movement row and reverses its effect on the owning
	// reserve's CurrentAmount as one atomic unit. The reversal is applied at
	// most once per movement, even across concurrent deletes. Returns
	// ErrReserveNotFound when the reserve doesn't exist and
	// ErrMovementNotFound when the movement doesn't exist or belongs to a
	// different reserve.
	Delete(ctx context.Context, reserveID, movementID uuid.UUID) error

	// GetByID retrieves a movement scoped to its reserve.
	// Returns ErrMovementNotFound on a miss or a reserve mismatch.
	GetByID(ctx context.Context, reserveID, movementID uuid.UUID) (*Movement, error)

	// ListByReserve retrieves all movements of a reserve joined with the
	// reserve summary, ordered by movement date ascending.
	ListByReserve(ctx context.Context, reserveID uuid.UUID) ([]*MovementWithReserve, error)
}
