package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded migrations of the dialect in the given
// direction. It works on a dedicated connection that is closed afterwards.
func Migrate(db *DB, direction Direction) error {
	migrationDB, err := sql.Open(db.Dialect.driverName(), db.dsn)
	if err != nil {
		return err
	}

	m, err := newMigrator(migrationDB, db.Dialect)
	if err != nil {
		migrationDB.Close()
		return err
	}
	defer m.Close()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	return nil
}

func newMigrator(migrationDB *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations/"+string(dialect))
	if err != nil {
		return nil, err
	}

	var driver migratedb.Driver

	switch dialect {
	case SQLite:
		driver, err = sqlite3.WithInstance(migrationDB, &sqlite3.Config{})
	case Postgres:
		driver, err = postgres.WithInstance(migrationDB, &postgres.Config{})
	case MySQL:
		driver, err = mysql.WithInstance(migrationDB, &mysql.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", dialect)
	}

	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, string(dialect), driver)
}
