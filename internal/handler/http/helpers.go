package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"ntu-food/internal/admin"
	"ntu-food/internal/auth"
	"ntu-food/internal/menu"
	"ntu-food/internal/order"
	"ntu-food/internal/queue"
	"ntu-food/internal/stall"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrOTPNotFound),
		errors.Is(err, stall.ErrStallNotFound),
		errors.Is(err, menu.ErrItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, queue.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, auth.ErrStudentIDExists),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderNotCancellable):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, stall.ErrNotStallOwner),
		errors.Is(err, menu.ErrNotAuthorized),
		errors.Is(err, order.ErrNotAuthorized),
		errors.Is(err, queue.ErrNotAuthorized),
		errors.Is(err, admin.ErrSelfDelete),
		errors.Is(err, admin.ErrLastAdmin):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrOTPInvalidCode),
		errors.Is(err, auth.ErrOTPTooManyAttempts),
		errors.Is(err, order.ErrStallClosed),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrItemUnavailable),
		errors.Is(err, order.ErrItemWrongStall),
		errors.Is(err, admin.ErrInvalidRole),
		errors.Is(err, admin.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage picks the message sent to the caller: sentinel errors
// are safe to expose verbatim, anything else gets the fallback.
func clientMessage(err error, fallback string) string {
	if mapErrorToStatusCode(err) != http.StatusInternalServerError {
		return err.Error()
	}
	return fallback
}

func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	log.Error().Err(err).Msg(fallback)
	respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, fallback))
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}
	return details
}

// decodeAndValidate decodes a strict JSON body into dst and runs
// struct validation, writing the error response itself. It reports
// whether the handler should continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}
