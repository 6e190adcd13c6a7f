package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNoAuth is returned when no tokens are stored for a client ID
var ErrNoAuth = errors.New("no Strava login stored")

// MemoryPath opens a throwaway database
const MemoryPath = ":memory:"

// DB holds Strava credentials. Routes and profiles are never stored.
type DB struct {
	*sql.DB
}

// Open opens ~/.climb/auth.db, creating it if necessary
func Open() (*DB, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return OpenPath(filepath.Join(home, ".climb", "auth.db"))
}

// OpenPath opens the database at path and brings its schema up to date
func OpenPath(path string) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &DB{db}, nil
}
