package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrJournalClosed indicates an operation on a closed journal.
var ErrJournalClosed = errors.New("trace journal is closed")

// Journal persists trace events to SQLite for later inspection.
// It is suitable for single-process use: one writer, concurrent readers.
type Journal struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ Sink = (*Journal)(nil)

// OpenJournal opens (or creates) a SQLite event journal at path.
// Use ":memory:" for testing.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trace_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			fields TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trace_events_execution
		ON trace_events(execution_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Journal{db: db}, nil
}

// Emit implements Sink. The execution_id field, when present, is
// extracted into its own column for indexed lookup.
func (j *Journal) Emit(_ context.Context, e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	fields, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	executionID, _ := e.Fields["execution_id"].(string)

	_, err = j.db.Exec(`
		INSERT INTO trace_events (execution_id, name, fields, created_at)
		VALUES (?, ?, ?, ?)
	`, executionID, e.Name, string(fields), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Events returns all events recorded for an execution, in emit order.
// An empty executionID returns every event in the journal.
func (j *Journal) Events(executionID string) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}

	query := `SELECT name, fields FROM trace_events ORDER BY id`
	args := []any{}
	if executionID != "" {
		query = `SELECT name, fields FROM trace_events WHERE execution_id = ? ORDER BY id`
		args = append(args, executionID)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var fields string
		if err := rows.Scan(&e.Name, &fields); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Close closes the journal. Further operations return ErrJournalClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true
	return j.db.Close()
}
