package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ntu-food/internal/auth"
)

type RegisterRequest struct {
	Email              string `json:"ntu_email" validate:"required,email"`
	StudentID          string `json:"student_id" validate:"required,min=4,max=16"`
	Name               string `json:"name" validate:"required,min=2"`
	Phone              string `json:"phone" validate:"omitempty,min=8,max=16"`
	DietaryPreferences string `json:"dietary_preferences" validate:"omitempty,max=255"`
	Password           string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"ntu_email" validate:"required,email"`
	Code  string `json:"otp_code" validate:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"ntu_email" validate:"required,email"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *auth.User `json:"user"`
}

type OTPPendingResponse struct {
	Email     string    `json:"ntu_email"`
	Token     string    `json:"registration_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthHandler struct {
	service  auth.Service
	validate *validator.Validate
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/verify-otp", h.handleVerifyOTP)
	router.Post("/auth/resend-otp", h.handleResendOTP)
	router.Post("/auth/cancel-registration", h.handleCancelRegistration)
}

func (h *AuthHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.handleMe)
}

// handleRegister starts an OTP-verified registration. The account only
// exists once the emailed code is confirmed.
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	pending, err := h.service.BeginOTPRegistration(r.Context(), auth.RegisterInput{
		Email:              requestPayload.Email,
		StudentID:          requestPayload.StudentID,
		Name:               requestPayload.Name,
		Phone:              requestPayload.Phone,
		DietaryPreferences: requestPayload.DietaryPreferences,
		Password:           requestPayload.Password,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to start registration")
		return
	}

	respondWithJSON(w, http.StatusAccepted, OTPPendingResponse{
		Email:     pending.Email,
		Token:     pending.Token,
		ExpiresAt: pending.ExpiresAt,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	token, user, err := h.service.Login(r.Context(), requestPayload.Identifier, requestPayload.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var requestPayload VerifyOTPRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	token, user, err := h.service.VerifyOTP(r.Context(), requestPayload.Email, requestPayload.Code)
	if err != nil {
		respondWithServiceError(w, err, "Failed to verify code")
		return
	}

	respondWithJSON(w, http.StatusCreated, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var requestPayload EmailRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	pending, err := h.service.ResendOTP(r.Context(), requestPayload.Email)
	if err != nil {
		respondWithServiceError(w, err, "Failed to resend code")
		return
	}

	respondWithJSON(w, http.StatusOK, OTPPendingResponse{
		Email:     pending.Email,
		Token:     pending.Token,
		ExpiresAt: pending.ExpiresAt,
	})
}

func (h *AuthHandler) handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	var requestPayload EmailRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	if err := h.service.CancelRegistration(r.Context(), requestPayload.Email); err != nil {
		respondWithServiceError(w, err, "Failed to cancel registration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, currentUser(r))
}
