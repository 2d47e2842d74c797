package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open a local SQLite database used for provider-response caching.
// The drive session itself never touches disk; only cached scene metadata
// lives here so repeated drives over the same area skip network calls.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", path, err)
	}

	// The cache sees concurrent writers from prefetch batches.
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("openDB: set pragma: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}
