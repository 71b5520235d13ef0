// Package store provides durable local persistence for the tagging
// session: item records and original file bytes in SQLite, plus the
// daily token-usage ledger.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	record   BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	item_id TEXT PRIMARY KEY,
	data    BLOB NOT NULL,
	preview BLOB
);
CREATE TABLE IF NOT EXISTS usage (
	name   TEXT PRIMARY KEY,
	date   TEXT NOT NULL,
	tokens INTEGER NOT NULL
);
`

// Store wraps the session database
type Store struct {
	db  *sql.DB
	now func() time.Time // injectable for ledger tests
}

// Open opens (or creates) the session database at the given path and
// configures it for use. It enables WAL mode and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// SQLite works best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
