// Package storage persists list items as JSON documents in SQLite. Every
// item belongs to one list, deletes are soft, and list reads page through an
// opaque cursor ordered by creation time.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Config configures the item store.
type Config struct {
	// Path is the SQLite database file. ":memory:" keeps the store in
	// process memory, which is what the tests use.
	Path string `conf:"path" yaml:"path" json:"path"`
}

// DefaultConfig returns the default store config.
func DefaultConfig() Config {
	return Config{Path: "adminhub.db"}
}

// Store is a SQLite-backed document store for list items.
type Store struct {
	db *sql.DB

	// now stamps created_at/updated_at, swappable in tests.
	now func() time.Time
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS items (
	list_key   TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	deleted_at INTEGER,
	PRIMARY KEY (list_key, id)
);

CREATE INDEX IF NOT EXISTS items_cursor ON items (list_key, created_at, id);
`

// Open opens the database, applies the connection pragmas and creates the
// schema. SQLite allows a single writer, so the pool is capped at one
// connection, which also keeps ":memory:" databases alive across calls.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg = DefaultConfig()
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Vacuum rewrites the database file to reclaim space freed by purges.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}
