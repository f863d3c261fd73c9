package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var snapshotSchema embed.FS

// MigrateSnapshotSchema brings the snapshot database at dbPath up to the
// latest embedded schema and returns the resulting version. Applying it to an
// up-to-date database is a no-op.
//
// It opens its own handle because the sqlite driver closes the connection it
// is given when the migrator is closed.
func MigrateSnapshotSchema(dbPath string) (uint, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open snapshot schema handle: %w", err)
	}
	defer db.Close()

	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("snapshot schema driver: %w", err)
	}
	src, err := iofs.New(snapshotSchema, "migrations")
	if err != nil {
		return 0, fmt.Errorf("snapshot schema source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("snapshot schema migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply snapshot schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read snapshot schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("snapshot schema version %d is dirty", version)
	}
	return version, nil
}
