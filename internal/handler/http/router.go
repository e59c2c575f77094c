package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ntu-food/internal/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Stall         *StallHandler
	Menu          *MenuHandler
	Order         *OrderHandler
	Queue         *QueueHandler
	Admin         *AdminHandler
	Authenticator *Authenticator
}

// NewRouter builds the full API surface under /api. Public routes come
// first; everything else sits behind bearer authentication, with the
// admin subtree additionally gated by role.
func NewRouter(h Handlers) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(api chi.Router) {
		h.Auth.RegisterRoutes(api)
		h.Stall.RegisterRoutes(api)
		h.Menu.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(h.Authenticator.Middleware)

			h.Auth.RegisterProtectedRoutes(protected)
			h.Stall.RegisterProtectedRoutes(protected)
			h.Menu.RegisterProtectedRoutes(protected)
			h.Order.RegisterProtectedRoutes(protected)
			h.Queue.RegisterProtectedRoutes(protected)

			protected.Group(func(adminOnly chi.Router) {
				adminOnly.Use(RequireRole(auth.RoleAdmin))
				h.Admin.RegisterRoutes(adminOnly)
			})
		})
	})

	return router
}
