package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/user/gitfeed/internal/storage"
)

// DisplayEvent is an event as returned to feed consumers.
type DisplayEvent struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Timestamp  string `json:"timestamp"`
}

// Options configures a Service. Zero values fall back to the defaults.
type Options struct {
	Window time.Duration
	Zone   *Zone
	Limit  int // 0 returns every event in the window
	Now    func() time.Time
}

// Service records events and reads back the recent ones.
type Service struct {
	store  storage.EventStore
	window time.Duration
	zone   Zone
	limit  int
	now    func() time.Time
}

// NewService creates a feed over store.
func NewService(store storage.EventStore, opts Options) *Service {
	s := &Service{
		store:  store,
		window: opts.Window,
		zone:   DefaultZone,
		limit:  opts.Limit,
		now:    opts.Now,
	}
	if s.window <= 0 {
		s.window = DefaultWindow
	}
	if opts.Zone != nil {
		s.zone = *opts.Zone
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Zone returns the configured display zone.
func (s *Service) Zone() Zone {
	return s.zone
}

// Record persists e and returns its id.
func (s *Service) Record(ctx context.Context, e *storage.Event) (string, error) {
	return s.store.Insert(ctx, e)
}

// Recent returns the events of the configured window, newest first.
func (s *Service) Recent(ctx context.Context) ([]DisplayEvent, error) {
	return s.QueryRecent(ctx, s.window, s.zone)
}

// QueryRecent returns events stored within window of now, newest first, with
// timestamps rendered in zone. Older events are never returned.
func (s *Service) QueryRecent(ctx context.Context, window time.Duration, zone Zone) ([]DisplayEvent, error) {
	cutoff := s.now().UTC().Add(-window)

	events, err := s.store.FindSince(ctx, cutoff, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}

	out := make([]DisplayEvent, 0, len(events))
	for _, e := range events {
		out = append(out, DisplayEvent{
			ID:         e.ID,
			Author:     e.Author,
			Action:     string(e.Action),
			FromBranch: e.FromBranch,
			ToBranch:   e.ToBranch,
			Timestamp:  zone.Format(e.Timestamp),
		})
	}
	return out, nil
}
