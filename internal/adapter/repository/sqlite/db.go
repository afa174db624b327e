// Package sqlite provides SQLite-backed implementations of the repository
// interfaces. It serves local development and the engine tests; the postgres
// package is the production adapter. SQLite allows a single writer at a time,
// and the connection is opened with _txlock=immediate so read-then-write
// balance transactions take the write lock up front instead of failing on
// upgrade. WAL mode keeps readers from blocking behind the writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection.
// Use ":memory:" for an in-memory database (tests).
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// A shared in-memory database disappears when its last connection
	// closes; a single connection also sidesteps SQLITE_BUSY between
	// pooled writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema if it doesn't exist yet
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS spaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_email TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS space_members (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (space_id, email)
	);

	CREATE TABLE IF NOT EXISTS reserves (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		target_amount TEXT,
		current_amount TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reserve_movements (
		id TEXT PRIMARY KEY,
		reserve_id TEXT NOT NULL REFERENCES reserves(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('deposit', 'withdraw')),
		amount TEXT NOT NULL,
		date DATETIME NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
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
