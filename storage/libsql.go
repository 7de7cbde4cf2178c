package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

type LibSQLOptions struct {
	// URL is either a local file ("file:results.db") or a remote turso
	// database ("libsql://name-org.turso.io?authToken=...").
	URL string
}

// NewLibSQLStore opens a libsql result database. The schema matches the
// sqlite store, so reports work against either.
func NewLibSQLStore(opts LibSQLOptions) (*SQLStore, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("libsql url is required")
	}

	db, err := sql.Open("libsql", opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return newSQLStore(db)
}
