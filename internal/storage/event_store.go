package storage

import (
	"context"
	"strconv"
	"time"
)

// SQLiteEventStore handles event persistence in sqlite.
type SQLiteEventStore struct {
	db *Database
}

// NewSQLiteEventStore creates a new sqlite backed event store.
func NewSQLiteEventStore(db *Database) *SQLiteEventStore {
	return &SQLiteEventStore{db: db}
}

// Insert stores a new event record.
func (s *SQLiteEventStore) Insert(ctx context.Context, e *Event) (string, error) {
	query := `
		INSERT INTO events (request_id, author, action, from_branch, to_branch, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		e.RequestID, e.Author, string(e.Action), e.FromBranch, e.ToBranch, e.Timestamp.UTC().UnixNano())
	if err != nil {
		return "", unavailable("insert event", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", unavailable("insert event", err)
	}

	e.ID = strconv.FormatInt(id, 10)
	return e.ID, nil
}

// FindSince returns events recorded at or after cutoff, newest first.
func (s *SQLiteEventStore) FindSince(ctx context.Context, cutoff time.Time, limit int) ([]Event, error) {
	query := `
		SELECT id, request_id, author, action, from_branch, to_branch, timestamp
		FROM events
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
	`
	args := []interface{}{cutoff.UTC().UnixNano()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("find events", err)
	}

	events := make([]Event, len(rows))
	for i, r := range rows {
		events[i] = Event{
			ID:         strconv.FormatInt(r.ID, 10),
			RequestID:  r.RequestID,
			Author:     r.Author,
			Action:     Action(r.Action),
			FromBranch: r.FromBranch,
			ToBranch:   r.ToBranch,
			Timestamp:  time.Unix(0, r.Timestamp).UTC(),
		}
	}
	return events, nil
}

// Ping checks the database connection.
func (s *SQLiteEventStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteEventStore) Close() error {
	return s.db.Close()
}
