package store

import (
	"database/sql"
	"fmt"
)

// schema lists the migrations in order; the database records how many have
// run in PRAGMA user_version. Only ever append.
var schema = []string{
	`CREATE TABLE strava_auth (
		client_id TEXT PRIMARY KEY,
		athlete_id INTEGER NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		scope TEXT NOT NULL DEFAULT '',
		saved_at INTEGER NOT NULL
	)`,
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > len(schema) {
		return fmt.Errorf("database schema version %d is newer than this build (%d)", version, len(schema))
	}

	for i := version; i < len(schema); i++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(schema[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bound parameters
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
