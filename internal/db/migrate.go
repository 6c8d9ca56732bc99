package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrations embed.FS

// RunMigrations applies the embedded migrations of driver to sqlDB, which
// stays open and owned by the caller.
func RunMigrations(sqlDB *sql.DB, driver string) error {
	// Closing m would close sqlDB as well.
	_, err := migrateUp(sqlDB, driver)
	return err
}

// MigratePool applies the postgres migrations through a database/sql
// handle borrowed from pool.
func MigratePool(pool *pgxpool.Pool) error {
	m, err := migrateUp(stdlib.OpenDBFromPool(pool), DriverPostgres)
	if err != nil {
		return err
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration handle: %w", dbErr)
	}
	return nil
}

func migrateUp(sqlDB *sql.DB, driver string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", driver, err)
	}

	var target database.Driver
	switch driver {
	case DriverSQLite:
		target, err = sqlite.WithInstance(sqlDB, &sqlite.Config{})
	case DriverPostgres:
		target, err = pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	default:
		err = fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("failed to prepare %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Printf("[STORE] %s schema at version %d", driver, version)
	return m, nil
}
