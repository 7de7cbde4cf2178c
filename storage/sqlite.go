package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteOptions struct {
	// DBPath is the database file. Parent directories are created.
	DBPath string
}

// NewSQLiteStore opens (or creates) an embedded sqlite result database.
func NewSQLiteStore(opts SQLiteOptions) (*SQLStore, error) {
	if opts.DBPath == "" {
		opts.DBPath = "./data/results.db"
	}

	dbDir := filepath.Dir(opts.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", opts.DBPath+"?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newSQLStore(db)
}
