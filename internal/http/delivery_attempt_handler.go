package http

import (
	"net/http"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/service"
	"github.com/hookline/hookline/pkg/logger"
)

// DeliveryAttemptHandler exposes the delivery history over HTTP
type DeliveryAttemptHandler struct {
	service *service.DeliveryAttemptService
	logger  logger.Logger
}

// NewDeliveryAttemptHandler creates a new delivery attempt handler
func NewDeliveryAttemptHandler(svc *service.DeliveryAttemptService, logger logger.Logger) *DeliveryAttemptHandler {
	return &DeliveryAttemptHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the delivery history routes
func (h *DeliveryAttemptHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /subscriptions/{id}/delivery-attempts", wrap(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /delivery-attempts/{id}", wrap(http.HandlerFunc(h.handleGet)))
}

// handleList handles GET /subscriptions/{id}/delivery-attempts?skip=&limit=
func (h *DeliveryAttemptHandler) handleList(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := pathID(r, "id")
	if !ok {
		WriteJSONError(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	attempts, err := h.service.ListBySubscription(r.Context(), subscriptionID, skip, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if attempts == nil {
		attempts = []*domain.DeliveryAttempt{}
	}

	writeJSON(w, http.StatusOK, attempts)
}

// handleGet handles GET /delivery-attempts/{id}
func (h *DeliveryAttemptHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		WriteJSONError(w, "Invalid delivery attempt id", http.StatusBadRequest)
		return
	}

	attempt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attempt)
}

func (h *DeliveryAttemptHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.WithField("error", err.Error()).Error("Delivery history request failed")
		WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
