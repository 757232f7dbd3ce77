package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/saadjs/tally/internal/apperr"
)

// pragmas run on the single pooled connection right after it opens.
var pragmas = []string{
	`PRAGMA foreign_keys = ON;`,
	`PRAGMA busy_timeout = 5000;`,
	`PRAGMA journal_mode = WAL;`,
}

// Open returns a one-connection SQLite handle. Failures are reported as
// AdapterUnavailable so callers can tell them apart from bad input.
func Open(path string) (*sql.DB, error) {
	const op = "open sqlite"
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperr.Unavailable(op, fmt.Errorf("ping %s: %w", path, err))
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, apperr.Unavailable(op, fmt.Errorf("%s: %w", p, err))
		}
	}
	return db, nil
}
