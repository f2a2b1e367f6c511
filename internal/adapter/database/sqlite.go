package database

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with every connection prepared by
// prepareSQLiteConn.
const sqliteDriver = "sqlite3_todos"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{ConnectHook: prepareSQLiteConn})
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// prepareSQLiteConn replaces the ASCII-only built-in lower() with one that
// folds case like strings.ToLower, and makes LIKE case-sensitive so tag
// elements match exactly. Search lowercases both sides itself.
func prepareSQLiteConn(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterFunc("lower", unicodeLower, true); err != nil {
		return err
	}

	_, err := conn.Exec("PRAGMA case_sensitive_like = ON", nil)
	return err
}

func unicodeLower(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	case []byte:
		if v == nil {
			return nil
		}
		return strings.ToLower(string(v))
	default:
		return v
	}
}
