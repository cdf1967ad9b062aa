package store

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matheus3301/fleetchat/internal/store/migrations"
)

// MigrateResult reports the schema version after a migration run.
type MigrateResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

func (db *DB) migrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.
func (db *DB) Migrate() (*MigrateResult, error) {
	return db.run("up", func(m *migrate.Migrate) error { return m.Up() })
}

// Rollback reverts the most recent migration.
func (db *DB) Rollback() (*MigrateResult, error) {
	return db.run("down", func(m *migrate.Migrate) error { return m.Steps(-1) })
}

func (db *DB) run(direction string, step func(*migrate.Migrate) error) (*MigrateResult, error) {
	m, err := db.migrator()
	if err != nil {
		return nil, err
	}
	changed := true
	if err := step(m); errors.Is(err, migrate.ErrNoChange) {
		changed = false
	} else if err != nil {
		return nil, fmt.Errorf("migration %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migration version: %w", err)
	}
	return &MigrateResult{Version: version, Dirty: dirty, Changed: changed}, nil
}
