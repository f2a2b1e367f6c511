package test

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"todoservice/internal/adapter/database"
)

// SetupMockDB puts sqlmock behind a database.DB speaking the given dialect.
func SetupMockDB(dialect database.Dialect) (*database.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}

	mockDB := database.Wrap(db, dialect, 50*time.Millisecond)

	cleanup := func() {
		db.Close()
	}

	return mockDB, mock, cleanup
}
