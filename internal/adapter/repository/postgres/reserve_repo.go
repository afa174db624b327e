package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// reserveRepository implements domain.ReserveRepository
type reserveRepository struct {
	db *DB
}

// NewReserveRepository creates a new reserve repository
func NewReserveRepository(db *DB) domain.ReserveRepository {
	return &reserveRepository{db: db}
}

const reserveColumns = `id, space_id, name, description, target_amount, current_amount, color, icon, active, created_at, updated_at`

// Create creates a new reserve
func (r *reserveRepository) Create(ctx context.Context, reserve *domain.Reserve) error {
	query := `
		INSERT INTO reserves (` + reserveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		reserve.ID,
		reserve.SpaceID,
		reserve.Name,
		reserve.Description,
		nullableAmount(reserve.TargetAmount),
		reserve.CurrentAmount.StringFixed(2),
		reserve.Color,
		reserve.Icon,
		reserve.Active,
		reserve.CreatedAt,
		reserve.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reserve: %w", err)
	}
	return nil
}

// GetByID retrieves a reserve by its ID
func (r *reserveRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reserve, error) {
	query := `
		SELECT ` + reserveColumns + `
		FROM reserves
		WHERE id = $1
	`

	reserve, err := scanReserve(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReserveNotFound
		}
		return nil, fmt.Errorf("failed to get reserve by ID: %w", err)
	}
	return reserve, nil
}

// ListBySpace retrieves all reserves in a space
func (r *reserveRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]*domain.Reserve, error) {
	query := `
		SELECT ` + reserveColumns + `
		FROM reserves
		WHERE space_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reserves: %w", err)
	}
	defer rows.Close()

	reserves := make([]*domain.Reserve, 0)
	for rows.Next() {
		reserve, err := scanReserve(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reserve: %w", err)
		}
		reserves = append(reserves, reserve)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reserves: %w", err)
	}
	return reserves, nil
}

// Update persists the editable fields of a reserve.
// current_amount and space_id are deliberately not in the statement.
func (r *reserveRepository) Update(ctx context.Context, reserve *domain.Reserve) error {
	query := `
		UPDATE reserves
		SET name = $1, description = $2, target_amount = $3, color = $4, icon = $5, active = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		reserve.Name,
		reserve.Description,
		nullableAmount(reserve.TargetAmount),
		reserve.Color,
		reserve.Icon,
		reserve.Active,
		reserve.UpdatedAt,
		reserve.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reserve: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrReserveNotFound
	}
	return nil
}

// Delete removes a reserve; movements cascade via the foreign key
func (r *reserveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reserves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reserve: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrReserveNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning helpers
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReserve(row rowScanner) (*domain.Reserve, error) {
	var reserve domain.Reserve
	var targetStr sql.NullString
	var balanceStr string

	err := row.Scan(
		&reserve.ID,
		&reserve.SpaceID,
		&reserve.Name,
		&reserve.Description,
		&targetStr,
		&balanceStr,
		&reserve.Color,
		&reserve.Icon,
		&reserve.Active,
		&reserve.CreatedAt,
		&reserve.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if targetStr.Valid {
		target, err := decimal.NewFromString(targetStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse target_amount: %w", err)
		}
		reserve.TargetAmount = &target
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current_amount: %w", err)
	}
	reserve.CurrentAmount = balance

	return &reserve, nil
}

// nullableAmount renders an optional decimal for a nullable NUMERIC column
func nullableAmount(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.StringFixed(2)
}
