package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// Up applies all available database migrations using the provided database handle.
func Up(ctx context.Context, db *sql.DB) error {
	return withMigrator(ctx, db, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// Down rolls back every applied migration.
func Down(ctx context.Context, db *sql.DB) error {
	return withMigrator(ctx, db, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// Version reports the applied schema version; ok is false on an empty schema.
func Version(ctx context.Context, db *sql.DB) (version uint, dirty bool, ok bool, err error) {
	err = withMigrator(ctx, db, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return verr
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, ok, nil
}

// withMigrator runs fn on a migrator bound to a single connection checked
// out of db. The connection goes back to the pool when fn returns; db itself
// stays open for the caller.
func withMigrator(ctx context.Context, db *sql.DB, fn func(m *migrate.Migrate) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	// the driver closes conn too; a second Close only reports sql.ErrConnDone
	defer conn.Close()

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		return err
	}
	src, err := newSource()
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer m.Close()

	return fn(m)
}
