package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/gitfeed/internal/storage"
)

func TestHandler_ServeHTTP(t *testing.T) {
	s := NewService(storage.NewMemoryEventStore(), Options{Now: fixedClock})
	insertAt(t, s, "first", now.Add(-30*time.Second))
	insertAt(t, s, "second", now.Add(-5*time.Second))
	insertAt(t, s, "stale", now.Add(-2*time.Minute))

	w := httptest.NewRecorder()
	NewHandler(s).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var got []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %s", len(got), w.Body.String())
	}

	for _, key := range []string{"id", "author", "action", "from_branch", "to_branch", "timestamp"} {
		if _, ok := got[0][key]; !ok {
			t.Errorf("missing key %q in %v", key, got[0])
		}
	}
	if got[0]["timestamp"] != "19 Oct 2026 - 02:59 PM IST" {
		t.Errorf("expected newest event first, got %v", got[0])
	}
}

func TestHandler_EmptyArray(t *testing.T) {
	s := NewService(storage.NewMemoryEventStore(), Options{Now: fixedClock})

	w := httptest.NewRecorder()
	NewHandler(s).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestHandler_StoreFailure(t *testing.T) {
	s := NewService(&failingStore{}, Options{Now: fixedClock})

	w := httptest.NewRecorder()
	NewHandler(s).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v (body %q)", err, w.Body.String())
	}
	if resp["status"] != "error" || resp["error"] != "failed to load events" {
		t.Errorf("unexpected body %v", resp)
	}
}
