// Package collect implements the mini app event collection endpoint.
//
// The contract is deliberately forgiving: a syntactically valid JSON body
// is always accepted with 202, whatever happens downstream. Storage,
// publishing and broadcasting are all best-effort; their failures are
// logged and never surfaced to the mini app.
package collect

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/repository"
)

// Store persists collected events.
type Store interface {
	Save(ctx context.Context, e *repository.Event) error
}

// Handler handles HTTP requests of the collection service.
type Handler struct {
	store     Store
	publisher EventPublisher
	hub       Broadcaster
	stats     StatsProvider
	registry  []banks.Bank
	log       *logger.Logger
}

// NewHandler creates a collection handler. publisher, hub and stats may be
// nil; the matching features are then silently disabled.
func NewHandler(store Store, publisher EventPublisher, hub Broadcaster, stats StatsProvider, registry []banks.Bank, log *logger.Logger) *Handler {
	return &Handler{
		store:     store,
		publisher: publisher,
		hub:       hub,
		stats:     stats,
		registry:  registry,
		log:       log,
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CollectEvent handles POST /api/webapp.
func (h *Handler) CollectEvent(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	event := repository.FromPayload(payload)

	if err := h.store.Save(r.Context(), &event); err != nil {
		// never fail the mini app over a storage problem
		h.log.Warn().Err(err).
			Str("transfer_id", event.TransferID).
			Str("event_type", event.EventType).
			Msg("event store write failed")
	}

	if h.publisher != nil {
		if err := h.publisher.PublishEventReceived(r.Context(), event); err != nil {
			h.log.Warn().Err(err).Msg("event publishing failed")
		}
	}

	if h.hub != nil {
		h.hub.Broadcast(EventReceivedMessage(event))
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// ListBanks handles GET /api/banks and /banks.json: the bank directory
// resource, served as a plain JSON array.
func (h *Handler) ListBanks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, h.registry)
}

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		respondError(w, http.StatusServiceUnavailable, "stats unavailable in sqlite mode")
		return
	}

	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
