// Package storage provides database operations and data models.
package storage

import "time"

// Action is the kind of repository activity an event records.
type Action string

const (
	ActionPush        Action = "PUSH"
	ActionPullRequest Action = "PULL_REQUEST"
)

// Event is the canonical record stored for every accepted webhook delivery.
type Event struct {
	ID         string    `json:"id,omitempty"`
	RequestID  string    `json:"request_id"`
	Author     string    `json:"author"`
	Action     Action    `json:"action"`
	FromBranch string    `json:"from_branch"`
	ToBranch   string    `json:"to_branch"`
	Timestamp  time.Time `json:"timestamp"` // ingestion time, UTC
}

// eventRow is the sqlite representation of an Event.
type eventRow struct {
	ID         int64  `db:"id"`
	RequestID  string `db:"request_id"`
	Author     string `db:"author"`
	Action     string `db:"action"`
	FromBranch string `db:"from_branch"`
	ToBranch   string `db:"to_branch"`
	Timestamp  int64  `db:"timestamp"` // unix nanoseconds
}
