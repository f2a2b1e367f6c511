package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"

	"todoservice/internal/config"
	"todoservice/internal/core/domain"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return sqliteDriver
	default:
		return string(d)
	}
}

func (d Dialect) placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

type DB struct {
	*sqlx.DB
	Dialect      Dialect
	QueryBuilder squirrel.StatementBuilderType

	dsn            string
	acquireTimeout time.Duration
}

// Open builds the traced connection pool and checks that the store answers.
// Migrations are not applied here, see Migrate.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dialect := Dialect(cfg.Driver)

	sqlDB, err := otelsql.Open(dialect.driverName(), cfg.URL,
		otelsql.WithDBSystem(dialect.system()),
		otelsql.WithDBName("todoservice"),
	)
	if err != nil {
		return nil, err
	}

	if cfg.LogQueries {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sql").Logger()
		sqlDB = sqldblogger.OpenDriver(cfg.URL, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithSQLQueryAsMessage(true),
			sqldblogger.WithLogArguments(false),
		)
	}

	configurePool(sqlDB, dialect, cfg)
	otelsql.ReportDBStatsMetrics(sqlDB)

	db := Wrap(sqlDB, dialect, cfg.AcquireTimeout)
	db.dsn = cfg.URL

	if err := db.TestConnection(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// Wrap adapts an already opened pool. Open uses it, and tests use it to put
// sqlmock behind the repository.
func Wrap(sqlDB *sql.DB, dialect Dialect, acquireTimeout time.Duration) *DB {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}

	return &DB{
		DB:             sqlx.NewDb(sqlDB, dialect.driverName()),
		Dialect:        dialect,
		QueryBuilder:   squirrel.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		acquireTimeout: acquireTimeout,
	}
}

func configurePool(db *sql.DB, dialect Dialect, cfg config.DatabaseConfig) {
	// SQLite serializes writers; a single connection also keeps a shared
	// in-memory database alive for the lifetime of the pool.
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

func (d Dialect) system() string {
	switch d {
	case Postgres:
		return "postgresql"
	case MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// WithConn waits at most the acquire timeout for a pooled connection and
// runs fn on it. Running out of time, or failing to connect, is reported as
// domain.ErrStoreUnavailable. fn receives a context that is not cancelled
// when the caller goes away, so a started statement always completes.
func (db *DB) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sqlx.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.Connx(acquireCtx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %v", domain.ErrStoreUnavailable, err)
	}
	defer conn.Close()

	return ClassifyError(fn(context.WithoutCancel(ctx), conn))
}

func (db *DB) TestConnection(ctx context.Context) error {
	return db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		return conn.PingContext(ctx)
	})
}

// PoolStats is a small view of sql.DBStats for health reports.
func (db *DB) PoolStats() map[string]interface{} {
	stats := db.DB.Stats()

	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	}
}
