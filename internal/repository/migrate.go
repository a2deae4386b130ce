package repository

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

var migrationsDir = map[string]string{
	dialect.Postgres: "migrations/postgres",
	dialect.SQLite:   "migrations/sqlite",
}

// Migrate applies every pending up migration for the database's dialect.
// The migrate instance is not closed because that would close db.SQL.
func Migrate(db *DB, logger *slog.Logger) error {
	var (
		drv database.Driver
		err error
	)
	switch db.Dialect {
	case dialect.Postgres:
		drv, err = migratepgx.WithInstance(db.SQL, &migratepgx.Config{})
	case dialect.SQLite:
		drv, err = migratesqlite.WithInstance(db.SQL, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %q", db.Dialect)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, migrationsDir[db.Dialect])
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, db.Dialect, drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Info("database migrated", "version", version)
	return nil
}
