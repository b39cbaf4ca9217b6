package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_messages (
	session_id TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	message    TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// SQLiteStore is a pure-Go (no cgo), file- or memory-backed Store
// implementation over modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open returns a SQLiteStore backed by the database at dsn (e.g. a file
// path, or ":memory:" for a process-local store).
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sessions: open %q: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessions: migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// newWithDB wraps an already-open *sql.DB without running the schema
// migration, so tests can substitute a sqlmock connection that expects an
// exact sequence of statements.
func newWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append inserts messages at the next available sequence numbers for
// sessionID, in a single transaction so a partial write is never visible.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, messages []chatmodel.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sessions: begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int64
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM session_messages WHERE session_id = ?`, sessionID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("sessions: read next seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_messages (session_id, seq, message) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sessions: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range messages {
		encoded, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("sessions: marshal message: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, next+int64(i), string(encoded)); err != nil {
			return fmt.Errorf("sessions: insert message: %w", err)
		}
	}

	return tx.Commit()
}

// Load returns sessionID's full history ordered by sequence number.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) ([]chatmodel.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM session_messages WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sessions: query: %w", err)
	}
	defer rows.Close()

	var out []chatmodel.Message
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sessions: scan: %w", err)
		}
		var m chatmodel.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("sessions: unmarshal message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
