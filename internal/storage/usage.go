// Package storage persists token usage to a local SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

// UsageRecord is one provider call's token accounting.
type UsageRecord struct {
	SessionID    string
	Provider     string
	InputTokens  int
	OutputTokens int
	Timestamp    time.Time
}

// SessionUsage is the aggregate for one session.
type SessionUsage struct {
	SessionID    string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// UsageStore records per-call token usage in SQLite.
type UsageStore struct {
	db *sql.DB
}

// NewUsageStore opens (or creates) the SQLite database at dbPath, enables WAL
// mode, and creates the schema.
func NewUsageStore(dbPath string) (*UsageStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_usage_session ON usage(session_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &UsageStore{db: db}, nil
}

// Record persists one usage record.
func (s *UsageStore) Record(rec UsageRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO usage (session_id, provider, input_tokens, output_tokens, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.Provider,
		rec.InputTokens,
		rec.OutputTokens,
		ts.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// SessionTotals returns the aggregate usage for one session.
func (s *UsageStore) SessionTotals(sessionID string) (*SessionUsage, error) {
	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM usage WHERE session_id = ?`, sessionID)

	out := SessionUsage{SessionID: sessionID}
	if err := row.Scan(&out.Calls, &out.InputTokens, &out.OutputTokens); err != nil {
		return nil, fmt.Errorf("query session totals: %w", err)
	}
	return &out, nil
}

// Totals returns aggregates for all sessions, most active first.
func (s *UsageStore) Totals() ([]SessionUsage, error) {
	rows, err := s.db.Query(`
		SELECT session_id, COUNT(*), SUM(input_tokens), SUM(output_tokens)
		FROM usage GROUP BY session_id
		ORDER BY SUM(input_tokens) + SUM(output_tokens) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var out []SessionUsage
	for rows.Next() {
		var u SessionUsage
		if err := rows.Scan(&u.SessionID, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *UsageStore) Close() error {
	return s.db.Close()
}
