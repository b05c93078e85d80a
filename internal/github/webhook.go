package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	gh "github.com/google/go-github/v57/github"
	"github.com/user/gitfeed/internal/storage"
	"github.com/user/gitfeed/pkg/logger"
)

// Recorder persists a normalized event.
type Recorder interface {
	Record(ctx context.Context, e *storage.Event) (string, error)
}

// WebhookHandler handles incoming GitHub webhooks.
type WebhookHandler struct {
	normalizer   *Normalizer
	recorder     Recorder
	maxBodyBytes int64

	mu       sync.RWMutex
	eventsCh chan<- storage.Event
	closed   bool
}

// webhookResponse is the JSON body of every webhook reply.
type webhookResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewWebhookHandler creates a new webhook handler. Stored events are offered
// to eventsCh when it is not nil. The handler owns eventsCh from then on and
// closes it in CloseEvents.
func NewWebhookHandler(normalizer *Normalizer, recorder Recorder, eventsCh chan<- storage.Event, maxBodyBytes int64) *WebhookHandler {
	return &WebhookHandler{
		normalizer:   normalizer,
		recorder:     recorder,
		eventsCh:     eventsCh,
		maxBodyBytes: maxBodyBytes,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := gh.WebHookType(r)
	deliveryID := gh.DeliveryID(r)

	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	payload, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Str("delivery", deliveryID).Msg("Webhook body too large")
			writeJSON(w, http.StatusRequestEntityTooLarge, webhookResponse{Status: "error", Error: "body too large"})
			return
		}
		logger.Error().Err(err).Str("delivery", deliveryID).Msg("Failed to read webhook body")
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: "failed to read body"})
		return
	}

	event, err := h.normalizer.Normalize(eventType, payload)
	switch {
	case errors.Is(err, ErrUnsupportedEvent):
		logger.Debug().Str("event_type", eventType).Str("delivery", deliveryID).Msg("Ignoring unsupported event type")
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
		return
	case err != nil:
		logger.Warn().Err(err).Str("event_type", eventType).Str("delivery", deliveryID).Msg("Rejecting malformed webhook")
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: err.Error()})
		return
	}

	id, err := h.recorder.Record(r.Context(), event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Str("delivery", deliveryID).Msg("Failed to store event")
		writeJSON(w, http.StatusInternalServerError, webhookResponse{Status: "error", Error: "failed to store event"})
		return
	}

	logger.Info().
		Str("id", id).
		Str("action", string(event.Action)).
		Str("author", event.Author).
		Str("request_id", event.RequestID).
		Str("delivery", deliveryID).
		Msg("Webhook event stored")

	h.notify(*event)

	writeJSON(w, http.StatusOK, webhookResponse{Status: "stored", ID: id})
}

// notify offers a stored event to the events channel without blocking.
func (h *WebhookHandler) notify(event storage.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.eventsCh == nil || h.closed {
		return
	}
	select {
	case h.eventsCh <- event:
	default:
		logger.Warn().Str("id", event.ID).Msg("Event channel full, skipping notification")
	}
}

// CloseEvents closes the events channel. Requests still in flight keep
// storing events but no longer notify. Safe to call more than once.
func (h *WebhookHandler) CloseEvents() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.eventsCh == nil || h.closed {
		return
	}
	h.closed = true
	close(h.eventsCh)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}
