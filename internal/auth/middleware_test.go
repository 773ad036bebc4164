package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	profile *models.Profile
	err     error
	calls   int
	cookie  string
}

func (s *stubResolver) Profile(ctx context.Context, cookie string) (*models.Profile, error) {
	s.calls++
	s.cookie = cookie
	return s.profile, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureSession(got *Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_Authenticated(t *testing.T) {
	resolver := &stubResolver{profile: &models.Profile{ID: "u1", Role: models.RoleAdmin}}
	var got Session

	req := httptest.NewRequest(http.MethodGet, "/admin/announcements", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "abc"})
	w := httptest.NewRecorder()

	SessionMiddleware(resolver, CookieConfig{}, discardLogger())(captureSession(&got)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SessionAuthenticated, got.State)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "connect.sid=abc", got.Cookie)
	assert.Equal(t, "connect.sid=abc", resolver.cookie)
	assert.Equal(t, 1, resolver.calls)
}

func TestSessionMiddleware_NoCookieIsAnonymous(t *testing.T) {
	resolver := &stubResolver{}
	var got Session

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	SessionMiddleware(resolver, CookieConfig{}, discardLogger())(captureSession(&got)).ServeHTTP(w, req)

	assert.Equal(t, SessionAnonymous, got.State)
	assert.Zero(t, resolver.calls)
}

func TestSessionMiddleware_ExpiredSessionClearsCookie(t *testing.T) {
	resolver := &stubResolver{err: models.ErrUnauthorized}
	var got Session

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
	w := httptest.NewRecorder()

	SessionMiddleware(resolver, CookieConfig{Name: "sid"}, discardLogger())(captureSession(&got)).ServeHTTP(w, req)

	assert.Equal(t, SessionAnonymous, got.State)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionMiddleware_ResolverFailure(t *testing.T) {
	resolver := &stubResolver{err: errors.New("connection refused")}
	called := false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "abc"})
	w := httptest.NewRecorder()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	SessionMiddleware(resolver, CookieConfig{}, discardLogger())(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, called)
}

func TestSessionFromContext_DefaultsToLoading(t *testing.T) {
	s := SessionFromContext(context.Background())

	assert.Equal(t, SessionLoading, s.State)
	assert.False(t, s.Authenticated())
	assert.Equal(t, "loading", s.State.String())
}

func TestRequireAuthenticated(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := RequireAuthenticated("/login")

	tests := []struct {
		name     string
		session  *Session
		htmx     bool
		wantCode int
		wantLoc  string
		wantHX   string
	}{
		{"authenticated", &Session{State: SessionAuthenticated, User: &models.Profile{ID: "u1"}}, false, http.StatusOK, "", ""},
		{"anonymous page", &Session{State: SessionAnonymous}, false, http.StatusSeeOther, "/login", ""},
		{"anonymous htmx", &Session{State: SessionAnonymous}, true, http.StatusUnauthorized, "", "/login"},
		{"unresolved", nil, false, http.StatusServiceUnavailable, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), *tt.session))
			}
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			w := httptest.NewRecorder()

			mw(ok).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			assert.Equal(t, tt.wantHX, w.Header().Get("HX-Redirect"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := RequireRole(models.RoleAdmin, models.RoleTeacher)

	serve := func(s Session) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/resources", nil)
		req = req.WithContext(WithSession(req.Context(), s))
		w := httptest.NewRecorder()
		mw(ok).ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve(Session{State: SessionAuthenticated, User: &models.Profile{Role: models.RoleTeacher}}))
	assert.Equal(t, http.StatusForbidden, serve(Session{State: SessionAuthenticated, User: &models.Profile{Role: models.RoleStudent}}))
	assert.Equal(t, http.StatusUnauthorized, serve(Session{State: SessionAnonymous}))
}
