package sqldb

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

func setupGoose(d dialect) (string, error) {
	if err := goose.SetDialect(d.goose); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return "", fmt.Errorf("open migrations dir: %w", err)
	}
	goose.SetBaseFS(migrationsDir)
	goose.SetLogger(goose.NopLogger())

	switch d.driver {
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "postgres", nil
	}
}

// Migrate applies all pending migrations for the driver's dialect.
func Migrate(db *sqlx.DB, driver string) error {
	d, err := dialectFor(driver)
	if err != nil {
		return err
	}
	dir, err := setupGoose(d)
	if err != nil {
		return err
	}
	if err := goose.Up(db.DB, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations_applied", "driver", driver)
	return nil
}

// MigrateDown rolls back the latest migration.
func MigrateDown(db *sqlx.DB, driver string) error {
	d, err := dialectFor(driver)
	if err != nil {
		return err
	}
	dir, err := setupGoose(d)
	if err != nil {
		return err
	}
	if err := goose.Down(db.DB, dir); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	slog.Info("migration_rolled_back", "driver", driver)
	return nil
}
