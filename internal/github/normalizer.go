// Package github turns GitHub webhook deliveries into canonical events.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/user/gitfeed/internal/storage"
)

// Supported values of the X-GitHub-Event header.
const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
)

var (
	// ErrUnsupportedEvent is returned for event kinds that are not recorded.
	// Callers treat it as an ignored delivery, not as a failure.
	ErrUnsupportedEvent = errors.New("unsupported event kind")
	// ErrMalformedPayload is returned when a supported event lacks a field
	// the canonical record needs.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Normalizer maps push and pull request payloads onto storage.Event.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer stamping events with now.
// A nil clock falls back to time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize parses payload according to kind.
func (n *Normalizer) Normalize(kind string, payload []byte) (*storage.Event, error) {
	var (
		event *storage.Event
		err   error
	)

	switch kind {
	case EventPush:
		event, err = normalizePush(payload)
	case EventPullRequest:
		event, err = normalizePullRequest(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, kind)
	}
	if err != nil {
		return nil, err
	}

	event.Timestamp = n.now().UTC()
	return event, nil
}

func normalizePush(payload []byte) (*storage.Event, error) {
	var e gh.PushEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, malformed("push", err.Error())
	}

	if e.GetAfter() == "" {
		return nil, malformed("push", "missing after")
	}
	if e.GetPusher().GetName() == "" {
		return nil, malformed("push", "missing pusher.name")
	}
	if e.GetRef() == "" {
		return nil, malformed("push", "missing ref")
	}

	branch := lastRefSegment(e.GetRef())
	if branch == "" {
		return nil, malformed("push", fmt.Sprintf("ref %q has no branch name", e.GetRef()))
	}
	return &storage.Event{
		RequestID:  e.GetAfter(),
		Author:     e.GetPusher().GetName(),
		Action:     storage.ActionPush,
		FromBranch: branch,
		ToBranch:   branch,
	}, nil
}

func normalizePullRequest(payload []byte) (*storage.Event, error) {
	var e gh.PullRequestEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, malformed("pull_request", err.Error())
	}

	pr := e.GetPullRequest()
	switch {
	case pr == nil:
		return nil, malformed("pull_request", "missing pull_request")
	case pr.ID == nil:
		return nil, malformed("pull_request", "missing pull_request.id")
	case pr.GetUser().GetLogin() == "":
		return nil, malformed("pull_request", "missing pull_request.user.login")
	case pr.GetHead().GetRef() == "":
		return nil, malformed("pull_request", "missing pull_request.head.ref")
	case pr.GetBase().GetRef() == "":
		return nil, malformed("pull_request", "missing pull_request.base.ref")
	}

	return &storage.Event{
		RequestID:  strconv.FormatInt(pr.GetID(), 10),
		Author:     pr.GetUser().GetLogin(),
		Action:     storage.ActionPullRequest,
		FromBranch: pr.GetHead().GetRef(),
		ToBranch:   pr.GetBase().GetRef(),
	}, nil
}

// lastRefSegment returns the part of ref after its last slash.
// refs/heads/main -> main
func lastRefSegment(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

func malformed(kind, detail string) error {
	return fmt.Errorf("%w: %s event: %s", ErrMalformedPayload, kind, detail)
}
