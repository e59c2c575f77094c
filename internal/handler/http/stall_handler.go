package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"ntu-food/internal/stall"
)

type StallRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Location    string   `json:"location" validate:"required,max=200"`
	CuisineType string   `json:"cuisine_type" validate:"max=50"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	IsOpen      bool     `json:"is_open"`
	AvgPrepTime int      `json:"avg_prep_time" validate:"min=0,max=120"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type StallHandler struct {
	service  stall.Service
	validate *validator.Validate
}

func NewStallHandler(service stall.Service) *StallHandler {
	return &StallHandler{service: service, validate: validator.New()}
}

func (h *StallHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stalls", h.handleListStalls)
	router.Get("/stalls/nearby", h.handleNearbyStalls)
	router.Get("/stalls/{id}", h.handleGetStall)
}

func (h *StallHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/stalls", h.handleCreateStall)
	router.Put("/stalls/{id}", h.handleUpdateStall)
	router.Delete("/stalls/{id}", h.handleDeleteStall)
}

func (h *StallHandler) handleListStalls(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stalls, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list stalls")
		return
	}
	respondWithJSON(w, http.StatusOK, stalls)
}

// handleNearbyStalls sorts open stalls by distance from the caller's
// reported coordinates.
func (h *StallHandler) handleNearbyStalls(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameters lat and lng are required")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondWithError(w, http.StatusBadRequest, "Coordinates out of range")
		return
	}

	nearby, err := h.service.Nearby(r.Context(), lat, lng)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list nearby stalls")
		return
	}
	respondWithJSON(w, http.StatusOK, nearby)
}

func (h *StallHandler) handleGetStall(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	st, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get stall")
		return
	}
	respondWithJSON(w, http.StatusOK, st)
}

func (h *StallHandler) handleCreateStall(w http.ResponseWriter, r *http.Request) {
	var requestPayload StallRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	created, err := h.service.Create(r.Context(), currentUser(r), stallFromRequest(0, requestPayload))
	if err != nil {
		respondWithServiceError(w, err, "Failed to create stall")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *StallHandler) handleUpdateStall(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var requestPayload StallRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.Update(r.Context(), currentUser(r), stallFromRequest(id, requestPayload))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update stall")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *StallHandler) handleDeleteStall(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), currentUser(r), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete stall")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func stallFromRequest(id int64, req StallRequest) *stall.Stall {
	return &stall.Stall{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		CuisineType: req.CuisineType,
		ImageURL:    req.ImageURL,
		IsOpen:      req.IsOpen,
		AvgPrepTime: req.AvgPrepTime,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	param := chi.URLParam(r, name)
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str("param", name).Str("value", param).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}
