// Package audit provides a SQLite-backed log of hook and check decisions
// stored in the reserved .audit directory under the notes root.
package audit

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS decisions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	ts        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	tool      TEXT NOT NULL DEFAULT '',
	file_path TEXT NOT NULL DEFAULT '',
	note_hash TEXT NOT NULL DEFAULT '',
	decision  TEXT NOT NULL,
	reason    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(ts);
`

// Decision is one logged enforcement outcome.
type Decision struct {
	ID       int64     `json:"id"`
	At       time.Time `json:"at"`
	Tool     string    `json:"tool"`
	FilePath string    `json:"filePath"`
	NoteHash string    `json:"noteHash"`
	Decision string    `json:"decision"`
	Reason   string    `json:"reason,omitempty"`
}

// Log wraps a sql.DB with decision-log operations.
type Log struct {
	conn *sql.DB
}

// FileFor returns the audit database location under a notes root.
func FileFor(notesRoot string) string {
	return filepath.Join(notesRoot, ".audit", "audit.db")
}

// Open opens (or creates) the audit database and applies the schema.
func Open(dsn string) (*Log, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("audit: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}
	return &Log{conn: conn}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.conn.Close()
}

// Record appends one decision. The timestamp is assigned here when unset.
func (l *Log) Record(d Decision) error {
	at := d.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := l.conn.Exec(`
		INSERT INTO decisions (ts, tool, file_path, note_hash, decision, reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`, at, d.Tool, d.FilePath, d.NoteHash, d.Decision, d.Reason)
	if err != nil {
		return fmt.Errorf("audit: record: %w", err)
	}
	return nil
}

// Recent returns the most recent decisions, newest first.
func (l *Log) Recent(limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.conn.Query(`
		SELECT id, ts, tool, file_path, note_hash, decision, reason
		FROM decisions ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.At, &d.Tool, &d.FilePath, &d.NoteHash, &d.Decision, &d.Reason); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
