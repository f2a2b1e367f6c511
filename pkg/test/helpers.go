package test

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"todoservice/internal/adapter/database"
	"todoservice/internal/config"
)

var testDBSeq atomic.Int64

// TestDatabaseConfig points at a private in-memory SQLite database. The shared
// cache lets the migration connection see the same database as the pool.
func TestDatabaseConfig() config.DatabaseConfig {
	name := fmt.Sprintf("todos_test_%d_%d", os.Getpid(), testDBSeq.Add(1))

	return config.DatabaseConfig{
		Driver:         "sqlite3",
		URL:            fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name),
		AcquireTimeout: 2 * time.Second,
	}
}

// InitTestDB opens a fresh migrated database; every call gets its own.
func InitTestDB() *database.DB {
	db, err := database.Open(context.Background(), TestDatabaseConfig())
	if err != nil {
		log.Fatal(err)
	}

	if err := database.Migrate(db, database.Up); err != nil {
		log.Fatal(err)
	}

	return db
}
