package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ntu-food/internal/auth"
	"ntu-food/internal/order"
)

type CreateOrderItemRequest struct {
	MenuItemID      int64  `json:"menu_item_id" validate:"required,gt=0"`
	Quantity        int    `json:"quantity" validate:"required,min=1,max=10"`
	SpecialRequests string `json:"special_requests" validate:"max=255"`
}

type CreateOrderRequest struct {
	StallID             int64                    `json:"stall_id" validate:"required,gt=0"`
	Items               []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PickupWindowStart   time.Time                `json:"pickup_window_start" validate:"required"`
	PickupWindowEnd     time.Time                `json:"pickup_window_end" validate:"required,gtfield=PickupWindowStart"`
	PaymentMethod       string                   `json:"payment_method" validate:"required,oneof=paynow card cash"`
	SpecialInstructions string                   `json:"special_instructions" validate:"max=500"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New()}
}

func (h *OrderHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListMyOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Post("/orders/{id}/confirm-payment", h.handleConfirmPayment)
	router.Post("/orders/{id}/cancel", h.handleCancelOrder)

	router.Get("/stalls/{stallID}/orders", h.handleListStallOrders)
	router.Post("/orders/{id}/start-preparing", h.handleStartPreparing)
	router.Post("/orders/{id}/mark-ready", h.handleMarkReady)
	router.Post("/orders/{id}/mark-completed", h.handleMarkCompleted)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	items := make([]order.CreateItemInput, 0, len(requestPayload.Items))
	for _, it := range requestPayload.Items {
		items = append(items, order.CreateItemInput{
			MenuItemID:      it.MenuItemID,
			Quantity:        it.Quantity,
			SpecialRequests: it.SpecialRequests,
		})
	}

	created, err := h.service.Create(r.Context(), currentUser(r), order.CreateInput{
		StallID:             requestPayload.StallID,
		Items:               items,
		PickupWindowStart:   requestPayload.PickupWindowStart,
		PickupWindowEnd:     requestPayload.PickupWindowEnd,
		PaymentMethod:       requestPayload.PaymentMethod,
		SpecialInstructions: requestPayload.SpecialInstructions,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListMine(r.Context(), currentUser(r).ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(r.Context(), currentUser(r), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleListStallOrders(w http.ResponseWriter, r *http.Request) {
	stallID, ok := parseIDParam(w, r, "stallID")
	if !ok {
		return
	}

	var status *order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := order.Status(raw)
		status = &s
	}

	orders, err := h.service.ListByStall(r.Context(), currentUser(r), stallID, status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list stall orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ConfirmPayment, "Failed to confirm payment")
}

func (h *OrderHandler) handleStartPreparing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartPreparing, "Failed to start preparing order")
}

func (h *OrderHandler) handleMarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkReady, "Failed to mark order ready")
}

func (h *OrderHandler) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkCompleted, "Failed to complete order")
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel, "Failed to cancel order")
}

// transition runs one of the status-changing service calls, which all
// share a signature.
func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, *auth.User, int64) (*order.Order, error), fallback string) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := fn(r.Context(), currentUser(r), id)
	if err != nil {
		respondWithServiceError(w, err, fallback)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}
