package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion describes the migration state after RunMigrations.
type SchemaVersion struct {
	Version uint
	Applied bool // False when the schema was already current.
}

// RunMigrations applies all pending database migrations embedded in the binary
// through conn, which must be the writer. Already-applied migrations are
// skipped, so it runs on every startup.
func RunMigrations(conn *sql.DB) (SchemaVersion, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("create migrator: %w", err)
	}

	applied := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return SchemaVersion{}, fmt.Errorf("run migrations: %w", err)
		}
		applied = false
	}

	version, dirty, err := m.Version()
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return SchemaVersion{}, fmt.Errorf("schema version %d is dirty; fix it by hand before restarting", version)
	}

	return SchemaVersion{Version: version, Applied: applied}, nil
}
