// Package store persists dispatch transcripts. Sessions themselves are
// never persisted; this is an append-only audit record.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one completed dispatch.
type Record struct {
	ID        int64
	UserID    string
	SessionID string
	Prompt    string
	Reply     string
	Outcome   string
	Attempts  int
	CreatedAt time.Time
}

// TranscriptStore is a sqlite-backed transcript log.
type TranscriptStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	session_id TEXT NOT NULL,
	prompt     TEXT NOT NULL,
	reply      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	attempts   INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcripts_user ON transcripts(user_id, created_at);
`

// Open opens (creating if needed) the transcript database at path.
func Open(path string) (*TranscriptStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init transcript schema: %w", err)
	}
	return &TranscriptStore{db: db}, nil
}

// Append records one dispatch.
func (s *TranscriptStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (user_id, session_id, prompt, reply, outcome, attempts) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.SessionID, rec.Prompt, rec.Reply, rec.Outcome, rec.Attempts,
	)
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Recent returns the latest n records for a user, newest first.
func (s *TranscriptStore) Recent(ctx context.Context, userID string, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, prompt, reply, outcome, attempts, created_at
		 FROM transcripts WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.SessionID, &r.Prompt, &r.Reply, &r.Outcome, &r.Attempts, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}
