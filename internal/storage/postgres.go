package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    request_id TEXT NOT NULL,
    author TEXT NOT NULL,
    action TEXT NOT NULL,
    from_branch TEXT NOT NULL,
    to_branch TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp DESC);
`

// PostgresEventStore persists events through a pgx connection pool.
type PostgresEventStore struct {
	pool *pgxpool.Pool
}

// NewPostgresEventStore connects to dsn and initializes the schema.
func NewPostgresEventStore(ctx context.Context, dsn string) (*PostgresEventStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresEventStore{pool: pool}, nil
}

// Insert stores a new event record.
func (s *PostgresEventStore) Insert(ctx context.Context, e *Event) (string, error) {
	sql := `
INSERT INTO events (request_id, author, action, from_branch, to_branch, timestamp)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text`

	var id string
	err := s.pool.QueryRow(ctx, sql,
		e.RequestID, e.Author, string(e.Action), e.FromBranch, e.ToBranch, e.Timestamp.UTC()).Scan(&id)
	if err != nil {
		return "", unavailable("insert event", err)
	}

	e.ID = id
	return id, nil
}

// FindSince returns events recorded at or after cutoff, newest first.
func (s *PostgresEventStore) FindSince(ctx context.Context, cutoff time.Time, limit int) ([]Event, error) {
	sql := `
SELECT id::text, request_id, author, action, from_branch, to_branch, timestamp
FROM events
WHERE timestamp >= $1
ORDER BY timestamp DESC`
	args := []any{cutoff.UTC()}
	if limit > 0 {
		sql += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, unavailable("find events", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Author, &action, &e.FromBranch, &e.ToBranch, &e.Timestamp); err != nil {
			return nil, unavailable("scan event", err)
		}
		e.Action = Action(action)
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("find events", err)
	}
	return out, nil
}

// Ping checks the pool can reach the server.
func (s *PostgresEventStore) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, "select 1").Scan(&one); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresEventStore) Close() error {
	s.pool.Close()
	return nil
}
