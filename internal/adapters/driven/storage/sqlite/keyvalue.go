// Package sqlite provides a SQLite-backed key-value storage backend.
// Slots live in a single table, one row per key. WAL mode keeps the
// file usable when a second docchat process has it open, though
// concurrent writers remain last-write-wins at the slot level.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is a SQLite-backed implementation of
// driven.KeyValueStore.
type KeyValueStore struct {
	db   *sql.DB
	path string
}

// NewKeyValueStore creates a SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.docchat/data.
func NewKeyValueStore(dataDir string) (*KeyValueStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "local.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating slots table: %w", err)
	}

	return &KeyValueStore{db: db, path: dbPath}, nil
}

// Get returns the value for a key and whether it was present.
// Read failures are logged and reported as absent, matching the
// corruption-tolerant semantics of the slots above.
func (s *KeyValueStore) Get(key string) (string, bool) {
	var value string
	row := s.db.QueryRow("SELECT value FROM slots WHERE key = ?", key)
	if err := row.Scan(&value); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("reading slot %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set overwrites the full value for a key.
func (s *KeyValueStore) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *KeyValueStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *KeyValueStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *KeyValueStore) Path() string {
	return s.path
}
