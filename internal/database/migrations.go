// file: internal/database/migrations.go
// version: 2.0.0
// guid: 9a8b7c6d-5e4f-3d2c-1b0a-9f8e7d6c5b4a

package database

import (
	"fmt"
	"log"
)

// Migration represents a single schema change. SQL backends execute the
// statements for their dialect; Pebble has no schema and only records the
// version.
type Migration struct {
	Version     int
	Description string
	SQLite      []string
	Postgres    []string
}

// migratable is implemented by every backend
type migratable interface {
	currentVersion() (int, error)
	// applyMigration runs m and records its version in one step
	applyMigration(m Migration) error
}

// migrations is the ordered list of all migrations
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create books table with constraints",
		SQLite:      []string{booksTableDDL("length", "INTEGER", "DATETIME")},
		Postgres:    []string{booksTableDDL("char_length", "BIGINT", "TIMESTAMPTZ")},
	},
	{
		Version:     2,
		Description: "Add book_type index",
		SQLite:      []string{`CREATE INDEX IF NOT EXISTS idx_books_book_type ON books(book_type)`},
		Postgres:    []string{`CREATE INDEX IF NOT EXISTS idx_books_book_type ON books(book_type)`},
	},
}

const schemaMigrationsDDL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`

// LatestVersion is the version a fully migrated store reports
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations applies all pending migrations
func RunMigrations(store Store) error {
	target, ok := store.(migratable)
	if !ok {
		return fmt.Errorf("store %s does not support migrations", store.Backend())
	}

	currentVersion, err := target.currentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending := []Migration{}
	for _, m := range migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		log.Printf("[DB] %s schema is up to date (version %d)", store.Backend(), currentVersion)
		return nil
	}

	log.Printf("[DB] Applying %d migrations to %s (current version %d)", len(pending), store.Backend(), currentVersion)
	for _, m := range pending {
		log.Printf("[DB] Applying migration %d: %s", m.Version, m.Description)
		if err := target.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
	}

	log.Printf("[DB] All migrations completed. Current version: %d", pending[len(pending)-1].Version)
	return nil
}

// SchemaVersion reports the last migration applied to store
func SchemaVersion(store Store) (int, error) {
	target, ok := store.(migratable)
	if !ok {
		return 0, fmt.Errorf("store %s does not support migrations", store.Backend())
	}
	return target.currentVersion()
}
