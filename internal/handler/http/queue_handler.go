package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ntu-food/internal/queue"
)

type QueueHandler struct {
	service queue.Service
}

func NewQueueHandler(service queue.Service) *QueueHandler {
	return &QueueHandler{service: service}
}

func (h *QueueHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/queue/stall/{stallID}", h.handleStallQueue)
	router.Get("/queue/order/{orderID}", h.handleOrderPosition)
}

func (h *QueueHandler) handleStallQueue(w http.ResponseWriter, r *http.Request) {
	stallID, ok := parseIDParam(w, r, "stallID")
	if !ok {
		return
	}

	entries, err := h.service.StallQueue(r.Context(), stallID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get stall queue")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (h *QueueHandler) handleOrderPosition(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "orderID")
	if !ok {
		return
	}

	position, err := h.service.PositionForOrder(r.Context(), orderID, currentUser(r).ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get queue position")
		return
	}
	respondWithJSON(w, http.StatusOK, position)
}
