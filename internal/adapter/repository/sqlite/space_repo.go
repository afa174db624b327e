package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// spaceRepository implements domain.SpaceRepository
type spaceRepository struct {
	db *DB
}

// NewSpaceRepository creates a new space repository
func NewSpaceRepository(db *DB) domain.SpaceRepository {
	return &spaceRepository{db: db}
}

// Create persists the space and its owner membership in one transaction
func (r *spaceRepository) Create(ctx context.Context, space *domain.Space, owner *domain.SpaceMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO spaces (id, name, owner_email, created_at) VALUES (?, ?, ?, ?)`,
		space.ID.String(), space.Name, space.OwnerEmail, space.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert space: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO space_members (id, space_id, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		owner.ID.String(), owner.SpaceID.String(), owner.Email, string(owner.Role), owner.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a space by its ID
func (r *spaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Space, error) {
	var space domain.Space
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_email, created_at FROM spaces WHERE id = ?`,
		id.String(),
	).Scan(&space.ID, &space.Name, &space.OwnerEmail, &space.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, fmt.Errorf("failed to get space by ID: %w", err)
	}
	return &space, nil
}

// ListByMember retrieves all spaces the email belongs to
func (r *spaceRepository) ListByMember(ctx context.Context, email string) ([]*domain.Space, error) {
	query := `
		SELECT s.id, s.name, s.owner_email, s.created_at
		FROM spaces s
		JOIN space_members m ON m.space_id = s.id
		WHERE m.email = ?
		ORDER BY s.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	spaces := make([]*domain.Space, 0)
	for rows.Next() {
		var space domain.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.OwnerEmail, &space.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		spaces = append(spaces, &space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spaces: %w", err)
	}
	return spaces, nil
}

// AddMember adds a member to a space
func (r *spaceRepository) AddMember(ctx context.Context, member *domain.SpaceMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO space_members (id, space_id, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		member.ID.String(), member.SpaceID.String(), member.Email, string(member.Role), member.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrDuplicateMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetMemberRole returns the member's role, or an empty role when absent
func (r *spaceRepository) GetMemberRole(ctx context.Context, spaceID uuid.UUID, email string) (domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM space_members WHERE space_id = ? AND email = ?`,
		spaceID.String(), email,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	return role, nil
}
