package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"ntu-food/internal/auth"
)

type contextKey string

const userContextKey contextKey = "current_user"

// Authenticator resolves the bearer token on each request into the
// current user and stores it on the request context.
type Authenticator struct {
	tokens  *auth.TokenManager
	service auth.Service
}

func NewAuthenticator(tokens *auth.TokenManager, service auth.Service) *Authenticator {
	return &Authenticator{tokens: tokens, service: service}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		studentID, err := a.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		user, err := a.service.UserByStudentID(r.Context(), studentID)
		if err != nil {
			log.Warn().Err(err).Str("student_id", studentID).Msg("Token subject has no matching user")
			respondWithError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}
		if !user.IsActive {
			respondWithError(w, http.StatusForbidden, auth.ErrAccountDisabled.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree to the given roles. It must run
// after the Authenticator middleware.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil {
				respondWithError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

func currentUser(r *http.Request) *auth.User {
	user, _ := r.Context().Value(userContextKey).(*auth.User)
	return user
}
