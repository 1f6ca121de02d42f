package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

// SQLiteStore keeps events in an embedded SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path,
// creating its parent directory first
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return newSQLiteStore(db), nil
}

func newSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS events(
	  id         TEXT PRIMARY KEY,
	  name       TEXT NOT NULL,
	  start_date TEXT NOT NULL,
	  status     TEXT NOT NULL,
	  data_json  TEXT NOT NULL CHECK (json_valid(data_json)),
	  first_seen TEXT NOT NULL,
	  updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_start  ON events(start_date);
	CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

// Upsert inserts evt or replaces the stored copy, keeping its first_seen time
func (s *SQLiteStore) Upsert(ctx context.Context, evt *event.Event) (bool, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM events WHERE id = ?`, evt.ID).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to look up event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO events(id, name, start_date, status, data_json, first_seen, updated_at)
	VALUES(?, ?, ?, ?, json(?), ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	  name       = excluded.name,
	  start_date = excluded.start_date,
	  status     = excluded.status,
	  data_json  = excluded.data_json,
	  updated_at = excluded.updated_at`,
		evt.ID, evt.Name, evt.Start.Date.String(), string(evt.Status), string(data), now, now)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to execute statement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return exists == 0, nil
}

// Get loads the stored copy of an event
func (s *SQLiteStore) Get(ctx context.Context, id string) (*event.Event, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data_json FROM events WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}

	var evt event.Event
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &evt, nil
}

// Upcoming returns stored events starting on or after from, ordered by date
func (s *SQLiteStore) Upcoming(ctx context.Context, from event.Date) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data_json FROM events WHERE start_date >= ? ORDER BY start_date, id`, from.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var evt event.Event
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, &evt)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
