package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/will-x86/wordhound"
)

// Fixed-width UTC layout so lexicographic order matches chronological
// order and every driver round-trips it as plain text.
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z"

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	status TEXT NOT NULL,
	matches TEXT NOT NULL DEFAULT '[]',
	links TEXT NOT NULL DEFAULT '[]',
	error_kind TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	screenshot TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_status ON results(status);
CREATE INDEX IF NOT EXISTS idx_results_url ON results(url);
`

// SQLStore persists results through database/sql. Both the sqlite and the
// libsql constructors return one; the schema is shared so reports work
// against either backend.
type SQLStore struct {
	db *sql.DB
}

func newSQLStore(db *sql.DB) (*SQLStore, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(res *wordhound.Result) error {
	matches, err := json.Marshal(res.Matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	links, err := json.Marshal(res.Links)
	if err != nil {
		return fmt.Errorf("failed to marshal links: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (id, url, status, matches, links, error_kind, detail, screenshot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.URL, string(res.Status), string(matches), string(links),
		string(res.ErrorKind), res.Detail, res.Screenshot,
		res.At.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

func (s *SQLStore) Results() ([]*wordhound.Result, error) {
	rows, err := s.db.Query(
		`SELECT id, url, status, matches, links, error_kind, detail, screenshot, created_at
		 FROM results
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []*wordhound.Result
	for rows.Next() {
		var res wordhound.Result
		var status, kind, matches, links, createdAt string
		if err := rows.Scan(&res.ID, &res.URL, &status, &matches, &links, &kind, &res.Detail, &res.Screenshot, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Status = wordhound.Status(status)
		res.ErrorKind = wordhound.ErrorKind(kind)
		if err := json.Unmarshal([]byte(matches), &res.Matches); err != nil {
			return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
		}
		if err := json.Unmarshal([]byte(links), &res.Links); err != nil {
			return nil, fmt.Errorf("failed to unmarshal links: %w", err)
		}
		if res.At, err = time.Parse(sqlTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Stats() (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT status, COUNT(*) as count
		 FROM results
		 GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
