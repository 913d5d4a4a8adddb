package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/archive/*.sql migrations/catalog/*.sql
var migrationFS embed.FS

// RunArchiveMigrations applies all pending migrations for the raw capture
// schema and returns version info.
func RunArchiveMigrations(db *DB) (uint, bool, error) {
	return runMigrations(db, "migrations/archive")
}

// RunCatalogMigrations applies all pending migrations for the catalog
// schema and returns version info.
func RunCatalogMigrations(db *DB) (uint, bool, error) {
	return runMigrations(db, "migrations/catalog")
}

func runMigrations(db *DB, dir string) (uint, bool, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return 0, false, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, dir)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return 0, false, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}
