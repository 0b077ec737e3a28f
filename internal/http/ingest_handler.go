package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/service"
	"github.com/hookline/hookline/pkg/logger"
)

// IngestHandler handles inbound event submissions
type IngestHandler struct {
	service *service.IngestService
	logger  logger.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(svc *service.IngestService, logger logger.Logger) *IngestHandler {
	return &IngestHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the ingest route
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST /ingest/{subscription_id}", wrap(http.HandlerFunc(h.handleIngest)))
}

// handleIngest handles POST /ingest/{subscription_id}. A 202 means the event
// row is durable and its first delivery attempt is queued; delivery itself
// happens asynchronously.
func (h *IngestHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := pathID(r, "subscription_id")
	if !ok {
		WriteJSONError(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	var req domain.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	webhook, err := h.service.Ingest(r.Context(), subscriptionID, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"webhook_id": webhook.ID,
		"status":     "accepted",
	})
}

func (h *IngestHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSubscriptionInactive), errors.Is(err, domain.ErrUnknownEventType):
		WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		// Storage or queue trouble: the caller should retry later.
		h.logger.WithField("error", err.Error()).Error("Ingest failed")
		WriteJSONError(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
	}
}
