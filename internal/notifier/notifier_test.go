package notifier

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/gitfeed/internal/feed"
	"github.com/user/gitfeed/internal/storage"
	"github.com/user/gitfeed/internal/telegram"
)

// fakeSender records sent messages and fails when err is set.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	chats []int64
	err   error
}

func (f *fakeSender) Send(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	f.chats = append(f.chats, chatID)
	return nil
}

func pushEvent(id string) storage.Event {
	return storage.Event{
		ID:         id,
		RequestID:  "abc123",
		Author:     "alice",
		Action:     storage.ActionPush,
		FromBranch: "main",
		ToBranch:   "main",
		Timestamp:  time.Date(2026, 10, 19, 9, 34, 0, 0, time.UTC),
	}
}

func TestHandleEvent(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, -100123, telegram.NewMessageBuilder(feed.DefaultZone))

	if err := n.HandleEvent(pushEvent("1")); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(sender.sent) != 1 || sender.chats[0] != -100123 {
		t.Fatalf("unexpected deliveries %v to %v", sender.sent, sender.chats)
	}
	if !strings.Contains(sender.sent[0], "*alice* pushed to `main`") {
		t.Errorf("unexpected message %q", sender.sent[0])
	}
}

func TestHandleEvent_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("bad request")}
	n := NewNotifier(sender, 1, telegram.NewMessageBuilder(feed.DefaultZone))

	if err := n.HandleEvent(pushEvent("1")); err == nil {
		t.Error("expected send error to be returned")
	}
}

func TestRun(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 1, telegram.NewMessageBuilder(feed.DefaultZone))

	events := make(chan storage.Event, 3)
	events <- pushEvent("1")
	events <- pushEvent("2")
	events <- pushEvent("3")
	close(events)

	n.Run(events)

	if len(sender.sent) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(sender.sent))
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("flood wait")}
	n := NewNotifier(sender, 1, telegram.NewMessageBuilder(feed.DefaultZone))

	events := make(chan storage.Event, 2)
	events <- pushEvent("1")
	events <- pushEvent("2")
	close(events)

	done := make(chan struct{})
	go func() {
		n.Run(events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel was closed")
	}
}
