package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/orderdesk/session-gateway/app"
	"github.com/orderdesk/session-gateway/policy"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Token extraction runs on every request. Anonymous requests pass
	// through; policy gates on the protected subtrees reject them.
	r.Use(deps.AuthMiddleware.Authenticate)

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints. Login and logout are reachable without a
		// valid session; /me requires one but enforces it itself.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.Post("/logout", deps.AuthHandler.HandleLogout)
			r.Get("/me", deps.AuthHandler.HandleMe)
		})

		// User management
		r.Route("/users", func(r chi.Router) {
			// Registration is open so customers can sign themselves up.
			r.Post("/", deps.UserHandler.HandleCreateUser)

			r.With(deps.AuthMiddleware.RequirePolicy(policy.DataQuery)).
				Get("/", deps.UserHandler.HandleListUsers)
			r.With(deps.AuthMiddleware.RequirePolicy(policy.AuthenticatedUser)).
				Get("/{id}", deps.UserHandler.HandleGetUser)
			r.With(deps.AuthMiddleware.RequirePolicy(policy.AdminOrManager)).
				Patch("/{id}", deps.UserHandler.HandleUpdateUser)
			r.With(deps.AuthMiddleware.RequirePolicy(policy.AdminOnly)).
				Delete("/{id}", deps.UserHandler.HandleDeleteUser)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
