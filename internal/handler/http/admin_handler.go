package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ntu-food/internal/admin"
)

type AdminUserUpdateRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=2"`
	Phone              *string `json:"phone" validate:"omitempty,min=8,max=16"`
	DietaryPreferences *string `json:"dietary_preferences" validate:"omitempty,max=255"`
	Role               *string `json:"role" validate:"omitempty,oneof=student stall_owner admin"`
	IsActive           *bool   `json:"is_active"`
}

type AdminHandler struct {
	service  admin.Service
	validate *validator.Validate
}

func NewAdminHandler(service admin.Service) *AdminHandler {
	return &AdminHandler{service: service, validate: validator.New()}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/admin/users", h.handleListUsers)
	router.Get("/admin/users/{id}", h.handleGetUser)
	router.Put("/admin/users/{id}", h.handleUpdateUser)
	router.Delete("/admin/users/{id}", h.handleDeleteUser)

	router.Get("/admin/orders", h.handleListOrders)
	router.Delete("/admin/orders/{id}", h.handleDeleteOrder)
	router.Get("/admin/analytics/dashboard", h.handleDashboard)
	router.Get("/admin/analytics/popular-items", h.handlePopularItems)
	router.Get("/admin/analytics/stall-performance", h.handleStallPerformance)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	users, err := h.service.ListUsers(r.Context(), offset, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get user")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload AdminUserUpdateRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), currentUser(r), id, admin.UserUpdate{
		Name:               requestPayload.Name,
		Phone:              requestPayload.Phone,
		DietaryPreferences: requestPayload.DietaryPreferences,
		Role:               requestPayload.Role,
		IsActive:           requestPayload.IsActive,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update user")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), currentUser(r), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var status *string
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = &raw
	}

	orders, err := h.service.ListOrders(r.Context(), status, offset, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to get dashboard stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) handlePopularItems(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.PopularItems(r.Context(), days, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get popular items")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) handleStallPerformance(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats, err := h.service.StallPerformance(r.Context(), days)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get stall performance")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
