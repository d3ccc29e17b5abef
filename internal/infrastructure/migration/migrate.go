package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator wraps golang-migrate with structured logging. Schema files
// live on disk as versioned up/down SQL pairs.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator over an existing postgres connection.
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("open migration source %s: %w", dir, err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	}
	return mg.logVersion("Schema migrated")
}

// Down rolls back every applied migration.
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("roll back migrations: %w", err)
	}
	mg.log.Info("Schema rolled back")
	return nil
}

// Steps applies n migrations forward, or backward when n is negative.
func (mg *Migrator) Steps(n int) error {
	err := mg.m.Steps(n)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("step %d migrations: %w", n, err)
	}
	return mg.logVersion("Schema stepped")
}

// Version reports the current schema version. A fresh database
// reports version zero.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

// Force stamps the schema version without running SQL. Only for
// recovering a dirty state after a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Stamping schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

func (mg *Migrator) logVersion(msg string) error {
	v, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	mg.log.Info(msg, zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}
