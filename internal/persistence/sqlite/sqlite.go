// Package sqlite persists the alarm collection in a single SQLite table,
// using the CGO-free modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Storage owns the database handle backing the alarm repository.
type Storage struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by dsn.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The driver is not safe for concurrent writes on one connection; the
	// engine serializes mutations anyway.
	db.SetMaxOpenConns(1)

	return &Storage{db: db}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the alarm table when it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS alarms (
			id         TEXT PRIMARY KEY,
			position   INTEGER NOT NULL,
			fire_time  TEXT NOT NULL,
			label      TEXT NOT NULL,
			days       TEXT NOT NULL,
			enabled    INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply alarm schema: %w", err)
	}
	return nil
}

// withTransaction executes fn inside a transaction, rolling back on error.
func (s *Storage) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
