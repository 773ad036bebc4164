package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/handlers"
	"github.com/BradenHooton/classdesk/internal/middleware"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type profiles map[string]*models.Profile

func (p profiles) Profile(ctx context.Context, cookie string) (*models.Profile, error) {
	if u, ok := p[cookie]; ok {
		return u, nil
	}
	return nil, models.ErrUnauthorized
}

type healthy struct{}

func (healthy) HealthCheck(ctx context.Context) error { return nil }

func newRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	console := handlers.NewConsole(handlers.ConsoleDeps{
		Confirmations: auth.NewConfirmationManager("routes-test-secret-0123456789", time.Minute),
		Audit:         &handlers.MockDeleteRecorder{},
		Logger:        logger,
		LoginURL:      "/login",
	})
	handlers.RegisterViews(console, handlers.Sources{
		Announcements: &handlers.MockSource[models.Announcement]{},
		Resources:     &handlers.MockSource[models.Resource]{},
		Posts:         &handlers.MockSource[models.Post]{},
		Users:         &handlers.MockSource[models.User]{},
		Audit:         &handlers.MockAuditLister{},
	})

	router := chi.NewRouter()
	RegisterRoutes(
		router,
		console,
		handlers.NewHealthHandler(healthy{}),
		profiles{
			"connect.sid=admin":   {ID: "a", Role: models.RoleAdmin},
			"connect.sid=student": {ID: "s", Role: models.RoleStudent},
		},
		auth.CookieConfig{},
		"/login",
		middleware.DefaultDeleteRateLimit(),
		logger,
	)
	return router
}

func TestRoutes(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name     string
		method   string
		path     string
		cookie   string
		origin   string
		status   int
		location string
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"root goes to console", http.MethodGet, "/", "", "", http.StatusSeeOther, "/admin"},
		{"anonymous goes to login", http.MethodGet, "/admin/posts", "", "", http.StatusSeeOther, "/login"},
		{"expired session goes to login", http.MethodGet, "/admin/posts", "gone", "", http.StatusSeeOther, "/login"},
		{"student reads posts", http.MethodGet, "/admin/posts", "student", "", http.StatusOK, ""},
		{"student cannot list users", http.MethodGet, "/admin/users/table", "student", "", http.StatusForbidden, ""},
		{"admin lists users", http.MethodGet, "/admin/users/table", "admin", "", http.StatusOK, ""},
		{"cross-origin delete is rejected", http.MethodPost, "/admin/users/u1/delete", "admin", "https://evil.example", http.StatusForbidden, ""},
		{"unknown path", http.MethodGet, "/nope", "", "", http.StatusNotFound, ""},
		{"audit has no delete", http.MethodGet, "/admin/audit/x/delete", "admin", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.DefaultSessionCookie, Value: tt.cookie})
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}
