package repository

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"job-auction/utils"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// goose keeps its dialect and filesystem in package globals
var gooseMu sync.Mutex

func setupGoose(driver string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(utils.Logger())
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("repository: set migration dialect %q: %w", driver, err)
	}
	return nil
}

// MigrateUp applies every pending migration
func MigrateUp(db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(driver); err != nil {
		return err
	}
	utils.Info("applying migrations", map[string]any{"driver": driver})
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("repository: migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration
func MigrateDown(db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(driver); err != nil {
		return err
	}
	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("repository: migrate down: %w", err)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration
func MigrationStatus(db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(driver); err != nil {
		return err
	}
	if err := goose.Status(db, migrationsDir); err != nil {
		return fmt.Errorf("repository: migration status: %w", err)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version
func SchemaVersion(db *sql.DB, driver string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := setupGoose(driver); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("repository: schema version: %w", err)
	}
	return v, nil
}
