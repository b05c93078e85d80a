package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryEventStore keeps events in process memory. Nothing survives a restart.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryEventStore creates an empty in-memory store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

// Insert appends a copy of e with a random id.
func (s *MemoryEventStore) Insert(ctx context.Context, e *Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable("insert event", err)
	}

	e.ID = uuid.NewString()
	rec := *e
	rec.Timestamp = rec.Timestamp.UTC()

	s.mu.Lock()
	s.events = append(s.events, rec)
	s.mu.Unlock()

	return e.ID, nil
}

// FindSince returns events recorded at or after cutoff, newest first.
func (s *MemoryEventStore) FindSince(ctx context.Context, cutoff time.Time, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find events", err)
	}

	s.mu.RLock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored events.
func (s *MemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Ping always succeeds.
func (s *MemoryEventStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryEventStore) Close() error {
	return nil
}
