package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/services"
	"github.com/go-chi/chi/v5"
)

// MockLister implements Lister for testing and records the queries it served
type MockLister[T any] struct {
	ListFunc func(ctx context.Context, cookie string, q listing.RequestQuery) (*listing.Page[T], error)

	mu      sync.Mutex
	queries []listing.RequestQuery
}

func (m *MockLister[T]) List(ctx context.Context, cookie string, q listing.RequestQuery) (*listing.Page[T], error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.ListFunc == nil {
		return listing.Paginate[T](nil, q, 0), nil
	}
	return m.ListFunc(ctx, cookie, q)
}

// Queries returns the queries served so far
func (m *MockLister[T]) Queries() []listing.RequestQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]listing.RequestQuery(nil), m.queries...)
}

// MockDeleter implements Deleter for testing and records deleted ids
type MockDeleter struct {
	DeleteFunc func(ctx context.Context, cookie, id string) error

	mu  sync.Mutex
	ids []string
}

func (m *MockDeleter) Delete(ctx context.Context, cookie, id string) error {
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()

	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, cookie, id)
}

// Deleted returns the ids passed to Delete so far
func (m *MockDeleter) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}

// MockDeleteRecorder implements DeleteRecorder for testing
type MockDeleteRecorder struct {
	mu      sync.Mutex
	records []services.DeleteRecord
}

func (m *MockDeleteRecorder) RecordDelete(ctx context.Context, rec services.DeleteRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

// Records returns the recorded deletes
func (m *MockDeleteRecorder) Records() []services.DeleteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.DeleteRecord(nil), m.records...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithViewer injects an authenticated session for user into the request
func WithViewer(r *http.Request, user *models.Profile) *http.Request {
	session := auth.Session{State: auth.SessionAuthenticated, User: user, Cookie: "connect.sid=test"}
	return r.WithContext(auth.WithSession(r.Context(), session))
}

// NewTestRouter mounts the console views the way the application routes do,
// without session resolution
func NewTestRouter(console *Console) http.Handler {
	router := chi.NewRouter()
	router.Get("/admin", console.Home)
	for _, view := range console.Views() {
		router.Route("/admin/"+view.Name(), func(r chi.Router) {
			r.Use(auth.RequireRole(view.Roles()...))
			r.Get("/", view.Page)
			r.Get("/table", view.Table)
			if view.Deletable() {
				r.Get("/{id}/delete", view.ConfirmDelete)
				r.Post("/{id}/delete", view.Delete)
			}
		})
	}
	return router
}

// MockGetter implements Getter for testing. Without GetFunc every id
// resolves to a zero row.
type MockGetter[T any] struct {
	GetFunc func(ctx context.Context, cookie, id string) (*T, error)
}

func (m *MockGetter[T]) Get(ctx context.Context, cookie, id string) (*T, error) {
	if m.GetFunc == nil {
		return new(T), nil
	}
	return m.GetFunc(ctx, cookie, id)
}

// MockSource implements Source for testing
type MockSource[T any] struct {
	MockLister[T]
	MockGetter[T]
	MockDeleter
}

// MockAuditLister implements AuditLister for testing
type MockAuditLister struct {
	ListFunc func(ctx context.Context, q listing.RequestQuery) (*listing.Page[models.AuditLog], error)
}

func (m *MockAuditLister) List(ctx context.Context, q listing.RequestQuery) (*listing.Page[models.AuditLog], error) {
	if m.ListFunc == nil {
		return listing.Paginate[models.AuditLog](nil, q, 0), nil
	}
	return m.ListFunc(ctx, q)
}
