package admin

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arborview/enroll/internal/metrics"
	"github.com/arborview/enroll/internal/middleware"
)

// maxRequestBody bounds JSON request bodies; the largest legitimate body is
// a registration message well under this.
const maxRequestBody = 64 * 1024

// NewRouter creates the panel router with all routes and middleware.
func (h *Handler) NewRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(middleware.HTTPLogging(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MaxBodySize(maxRequestBody))

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/setup-status", h.HandleSetupStatus)
		r.Post("/setup", h.HandleSetup)
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
	})

	// Admin panel API (cookie auth with transparent refresh)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/me", h.HandleMe)
		r.Post("/me/password", h.HandleChangePassword)

		r.Get("/admins", h.HandleListAdmins)
		r.Post("/admins", h.HandleCreateAdmin)
		r.Patch("/admins/{id}/role", h.HandleUpdateAdminRole)
		r.Delete("/admins/{id}", h.HandleDeleteAdmin)

		r.Get("/settings/notification-email", h.HandleGetSettings)
		r.Put("/settings/notification-email", h.HandleUpdateSettings)

		r.Get("/registrations", h.HandleListRegistrations)

		r.Post("/loglevel", h.HandleSetLogLevel)
	})

	return r
}
