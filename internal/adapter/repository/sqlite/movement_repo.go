package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// movementRepository implements domain.MovementRepository.
// It is the only code path that writes reserves.current_amount.
type movementRepository struct {
	db *DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *DB) domain.MovementRepository {
	return &movementRepository{db: db}
}

// Create inserts the movement and applies its balance delta in one database
// transaction. SQLite has no SELECT ... FOR UPDATE; the connection's
// _txlock=immediate setting makes the whole transaction a write transaction,
// so the balance read happens under the database write lock.
func (r *movementRepository) Create(ctx context.Context, m *domain.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := lockReserveBalance(ctx, tx, m.ReserveID)
	if err != nil {
		return err
	}

	next, err := domain.NextBalance(current, m)
	if err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO reserve_movements (id, reserve_id, user_id, type, amount, date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		m.ID.String(),
		m.ReserveID.String(),
		m.UserID.String(),
		string(m.Type),
		m.Amount.StringFixed(2),
		m.Date,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	if err := updateReserveBalance(ctx, tx, m.ReserveID, next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the movement and reverses its balance effect in one
// database transaction. As in the postgres adapter, the movement row is read
// only after the balance row, inside the write transaction, and the DELETE's
// row count is verified, so a movement's effect can never be reversed twice.
func (r *movementRepository) Delete(ctx context.Context, reserveID, movementID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := lockReserveBalance(ctx, tx, reserveID)
	if err != nil {
		return err
	}

	var m domain.Movement
	var amountStr string
	err = tx.QueryRowContext(ctx,
		`SELECT id, type, amount FROM reserve_movements WHERE id = ? AND reserve_id = ?`,
		movementID.String(), reserveID.String(),
	).Scan(&m.ID, &m.Type, &amountStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrMovementNotFound
		}
		return fmt.Errorf("failed to load movement: %w", err)
	}
	m.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("failed to parse movement amount: %w", err)
	}

	reversed := domain.ReversedBalance(current, &m)

	result, err := tx.ExecContext(ctx, `DELETE FROM reserve_movements WHERE id = ?`, movementID.String())
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrMovementNotFound
	}

	if err := updateReserveBalance(ctx, tx, reserveID, reversed); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a movement scoped to its reserve
func (r *movementRepository) GetByID(ctx context.Context, reserveID, movementID uuid.UUID) (*domain.Movement, error) {
	query := `
		SELECT id, reserve_id, user_id, type, amount, date, description, created_at, updated_at
		FROM reserve_movements
		WHERE id = ? AND reserve_id = ?
	`

	var m domain.Movement
	var amountStr string
	err := r.db.QueryRowContext(ctx, query, movementID.String(), reserveID.String()).Scan(
		&m.ID, &m.ReserveID, &m.UserID, &m.Type, &amountStr, &m.Date, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}

	m.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse movement amount: %w", err)
	}
	return &m, nil
}

// ListByReserve retrieves all movements of a reserve joined with the reserve
// summary, ordered by movement date ascending
func (r *movementRepository) ListByReserve(ctx context.Context, reserveID uuid.UUID) ([]*domain.MovementWithReserve, error) {
	query := `
		SELECT m.id, m.reserve_id, m.user_id, m.type, m.amount, m.date, m.description, m.created_at, m.updated_at,
		       r.id, r.name, r.color, r.icon
		FROM reserve_movements m
		JOIN reserves r ON r.id = m.reserve_id
		WHERE m.reserve_id = ?
		ORDER BY m.date, m.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, reserveID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := make([]*domain.MovementWithReserve, 0)
	for rows.Next() {
		var mv domain.MovementWithReserve
		var amountStr string
		err := rows.Scan(
			&mv.ID, &mv.ReserveID, &mv.UserID, &mv.Type, &amountStr, &mv.Date, &mv.Description, &mv.CreatedAt, &mv.UpdatedAt,
			&mv.Reserve.ID, &mv.Reserve.Name, &mv.Reserve.Color, &mv.Reserve.Icon,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		mv.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse movement amount: %w", err)
		}
		movements = append(movements, &mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}
	return movements, nil
}

// lockReserveBalance reads the reserve's cached balance inside the write
// transaction
func lockReserveBalance(ctx context.Context, tx *sql.Tx, reserveID uuid.UUID) (decimal.Decimal, error) {
	var balanceStr string
	err := tx.QueryRowContext(ctx,
		`SELECT current_amount FROM reserves WHERE id = ?`,
		reserveID.String(),
	).Scan(&balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, domain.ErrReserveNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("failed to read reserve balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse current_amount: %w", err)
	}
	return balance, nil
}

func updateReserveBalance(ctx context.Context, tx *sql.Tx, reserveID uuid.UUID, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reserves SET current_amount = ?, updated_at = ? WHERE id = ?`,
		balance.StringFixed(2), time.Now().UTC(), reserveID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update reserve balance: %w", err)
	}
	return nil
}
