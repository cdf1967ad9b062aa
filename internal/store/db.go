package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database, used by tests.
const MemoryPath = ":memory:"

// DB wraps the dev server's SQLite database.
type DB struct {
	*sql.DB
}

// Open connects to the SQLite file at path with WAL journaling, a busy
// timeout and foreign keys enforced. SQLite allows one writer, so the pool is
// capped at a single connection and writers queue in database/sql instead of
// failing with SQLITE_BUSY.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db %s: %w", path, err)
	}
	return &DB{db}, nil
}

func dsn(path string) string {
	params := []string{"_busy_timeout=5000", "_foreign_keys=on"}
	if path != MemoryPath {
		params = append(params, "_journal_mode=WAL")
	}
	return path + "?" + strings.Join(params, "&")
}
