// Package schedule manages calendar events and LLM-assisted slot suggestions.
package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/valetapp/valet/internal/store"
)

// Event is one calendar entry.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Notes string    `json:"notes,omitempty"`
}

// EventStore persists scheduler events.
type EventStore struct {
	db *store.DB
}

// NewEventStore wraps an opened database.
func NewEventStore(db *store.DB) *EventStore {
	return &EventStore{db: db}
}

// Create inserts a new event, assigning an ID when one is not provided.
func (s *EventStore) Create(ctx context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Title == "" {
		return Event{}, fmt.Errorf("event title is required")
	}
	if !ev.End.After(ev.Start) {
		return Event{}, fmt.Errorf("event end must be after start")
	}

	_, err := s.db.SQL().ExecContext(ctx,
		`INSERT INTO events (id, title, start_at, end_at, notes) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.Title, ev.Start.UTC().Format(time.RFC3339), ev.End.UTC().Format(time.RFC3339), ev.Notes)
	if err != nil {
		return Event{}, fmt.Errorf("inserting event: %w", err)
	}
	return ev, nil
}

// Get fetches one event by ID. Returns sql.ErrNoRows when absent.
func (s *EventStore) Get(ctx context.Context, id string) (Event, error) {
	row := s.db.SQL().QueryRowContext(ctx,
		`SELECT id, title, start_at, end_at, notes FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// List returns all events ordered by start time.
func (s *EventStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.SQL().QueryContext(ctx,
		`SELECT id, title, start_at, end_at, notes FROM events ORDER BY start_at`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Delete removes one event. Deleting a missing event is not an error.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.SQL().ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var ev Event
	var start, end string
	if err := row.Scan(&ev.ID, &ev.Title, &start, &end, &ev.Notes); err != nil {
		if err == sql.ErrNoRows {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("scanning event: %w", err)
	}

	var err error
	if ev.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return Event{}, fmt.Errorf("parsing event start: %w", err)
	}
	if ev.End, err = time.Parse(time.RFC3339, end); err != nil {
		return Event{}, fmt.Errorf("parsing event end: %w", err)
	}
	return ev, nil
}
