package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/service"
	"github.com/hookline/hookline/pkg/logger"
)

// SubscriptionHandler handles HTTP requests for subscriptions
type SubscriptionHandler struct {
	service *service.SubscriptionService
	logger  logger.Logger
}

// subscriptionResponse is the API representation of a subscription. The
// signing secret is write-only and never appears in a response.
type subscriptionResponse struct {
	ID         int64     `json:"id"`
	TargetURL  string    `json:"target_url"`
	EventTypes []string  `json:"event_types"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newSubscriptionResponse(sub *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:         sub.ID,
		TargetURL:  sub.TargetURL,
		EventTypes: sub.EventTypes,
		IsActive:   sub.IsActive,
		CreatedAt:  sub.CreatedAt,
		UpdatedAt:  sub.UpdatedAt,
	}
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(svc *service.SubscriptionService, logger logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the subscription routes
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST /subscriptions", wrap(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /subscriptions", wrap(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /subscriptions/{id}", wrap(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /subscriptions/{id}", wrap(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /subscriptions/{id}", wrap(http.HandlerFunc(h.handleDelete)))
}

// handleCreate handles POST /subscriptions
func (h *SubscriptionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSubscriptionResponse(sub))
}

// handleList handles GET /subscriptions
func (h *SubscriptionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, newSubscriptionResponse(sub))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGet handles GET /subscriptions/{id}
func (h *SubscriptionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		WriteJSONError(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSubscriptionResponse(sub))
}

// handleUpdate handles PUT /subscriptions/{id}
func (h *SubscriptionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		WriteJSONError(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	var req domain.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSubscriptionResponse(sub))
}

// handleDelete handles DELETE /subscriptions/{id}
func (h *SubscriptionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		WriteJSONError(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *SubscriptionHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.WithField("error", err.Error()).Error("Subscription request failed")
		WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
