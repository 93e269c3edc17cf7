package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		profile    TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		username   TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL CHECK(role IN ('student','mentor','teacher')),
		cookies    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Sessions are bound to the backend they were opened against.
	`ALTER TABLE sessions ADD COLUMN base_url TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS auth_events (
		id         TEXT PRIMARY KEY,
		profile    TEXT NOT NULL,
		username   TEXT NOT NULL,
		kind       TEXT NOT NULL CHECK(kind IN ('login','register','logout','expired')),
		base_url   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_events_profile ON auth_events(profile, created_at)`,
}
