package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=pocketfin sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema if it doesn't exist yet. Decimal columns use
// NUMERIC(10,2); movements cascade when their reserve (or space) is deleted.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS spaces (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		owner_email TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS space_members (
		id UUID PRIMARY KEY,
		space_id UUID NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (space_id, email)
	);

	CREATE TABLE IF NOT EXISTS reserves (
		id UUID PRIMARY KEY,
		space_id UUID NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		target_amount NUMERIC(10,2),
		current_amount NUMERIC(10,2) NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reserve_movements (
		id UUID PRIMARY KEY,
		reserve_id UUID NOT NULL REFERENCES reserves(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('deposit', 'withdraw')),
		amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
		date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reserve_movements_reserve_date
		ON reserve_movements(reserve_id, date);
	CREATE INDEX IF NOT EXISTS idx_reserves_space
		ON reserves(space_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
