package routes

import (
	"log/slog"
	"net/http"

	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/handlers"
	"github.com/BradenHooton/classdesk/internal/middleware"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	console *handlers.Console,
	healthHandler *handlers.HealthHandler,
	sessions auth.ProfileResolver,
	cookies auth.CookieConfig,
	loginURL string,
	deleteLimit middleware.RateLimitConfig,
	logger *slog.Logger,
) {
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, "page not found")
	})

	// Public routes
	router.Get("/health", healthHandler.Health)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	// Console routes - platform session required
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.SessionMiddleware(sessions, cookies, logger))
		r.Use(auth.RequireAuthenticated(loginURL))
		r.Use(middleware.SameOrigin(logger))

		r.Get("/", console.Home)

		for _, view := range console.Views() {
			r.Route("/"+view.Name(), func(r chi.Router) {
				r.Use(auth.RequireRole(view.Roles()...))

				r.Get("/", view.Page)
				r.Get("/table", view.Table)

				if view.Deletable() {
					r.Get("/{id}/delete", view.ConfirmDelete)
					r.With(middleware.RateLimitByViewer(deleteLimit)).Post("/{id}/delete", view.Delete)
				}
			})
		}
	})
}
