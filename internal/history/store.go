// Package history persists a record of every handled chat event. The router
// writes one row per command or button press at its supervised boundary, so
// an operator can tell transport faults from bad input after the fact.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeUserErr = "user_error"
	OutcomeFault   = "fault"
)

// Event is one handled chat event.
type Event struct {
	ID        string // correlation id
	Kind      string // "command" or "callback"
	ChatID    int64
	ActorID   int64
	Command   string // command name or callback head token
	Outcome   string
	Error     string
	CreatedAt time.Time
}

// Store provides persistent event history using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the history database at dataPath and
// runs migrations.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the events table.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		chat_id INTEGER NOT NULL,
		actor_id INTEGER NOT NULL,
		command TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at)`)
	return err
}

// RecordEvent stores one handled event.
func (s *Store) RecordEvent(ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, kind, chat_id, actor_id, command, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Kind, ev.ChatID, ev.ActorID, ev.Command, ev.Outcome, ev.Error, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent events, newest first.
func (s *Store) RecentEvents(limit int) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, chat_id, actor_id, command, outcome, COALESCE(error, ''), created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.ChatID, &ev.ActorID,
			&ev.Command, &ev.Outcome, &ev.Error, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
