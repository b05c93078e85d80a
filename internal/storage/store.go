package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks failures of the underlying store.
var ErrUnavailable = errors.New("event store unavailable")

// EventStore persists canonical events and reads back recent ones.
//
// Stores are append-only. Duplicate request ids are accepted as separate
// records since webhook redeliveries are not deduplicated.
type EventStore interface {
	// Insert appends e, sets e.ID and returns the assigned id.
	Insert(ctx context.Context, e *Event) (string, error)
	// FindSince returns events with Timestamp >= cutoff, newest first.
	// A limit <= 0 returns every match. The order of events sharing a
	// timestamp is unspecified.
	FindSince(ctx context.Context, cutoff time.Time, limit int) ([]Event, error)
	Ping(ctx context.Context) error
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
