package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ntu-food/internal/menu"
)

type MenuItemRequest struct {
	StallID         int64   `json:"stall_id" validate:"required,gt=0"`
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Description     string  `json:"description" validate:"max=500"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Category        string  `json:"category" validate:"max=50"`
	ImageURL        string  `json:"image_url" validate:"omitempty,url"`
	IsAvailable     bool    `json:"is_available"`
	IsVegetarian    bool    `json:"is_vegetarian"`
	IsHalal         bool    `json:"is_halal"`
	PreparationTime int     `json:"preparation_time" validate:"min=0,max=120"`
}

type MenuHandler struct {
	service  menu.Service
	validate *validator.Validate
}

func NewMenuHandler(service menu.Service) *MenuHandler {
	return &MenuHandler{service: service, validate: validator.New()}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stalls/{stallID}/menu", h.handleListMenu)
	router.Get("/menu/{id}", h.handleGetItem)
}

func (h *MenuHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/menu", h.handleCreateItem)
	router.Put("/menu/{id}", h.handleUpdateItem)
	router.Delete("/menu/{id}", h.handleDeleteItem)
}

func (h *MenuHandler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	stallID, ok := parseIDParam(w, r, "stallID")
	if !ok {
		return
	}

	items, err := h.service.ListByStall(r.Context(), stallID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list menu items")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get menu item")
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload MenuItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	created, err := h.service.Create(r.Context(), currentUser(r), menuItemFromRequest(0, requestPayload))
	if err != nil {
		respondWithServiceError(w, err, "Failed to create menu item")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *MenuHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload MenuItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.Update(r.Context(), currentUser(r), menuItemFromRequest(id, requestPayload))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update menu item")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *MenuHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), currentUser(r), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func menuItemFromRequest(id int64, req MenuItemRequest) *menu.Item {
	return &menu.Item{
		ID:              id,
		StallID:         req.StallID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		IsAvailable:     req.IsAvailable,
		IsVegetarian:    req.IsVegetarian,
		IsHalal:         req.IsHalal,
		PreparationTime: req.PreparationTime,
	}
}
