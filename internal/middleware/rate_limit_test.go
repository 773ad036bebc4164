package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func deleteRequest(remoteAddr string, user *models.Profile) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/announcements/a1/delete", nil)
	req.RemoteAddr = remoteAddr
	if user != nil {
		req = req.WithContext(auth.WithSession(req.Context(), auth.Session{State: auth.SessionAuthenticated, User: user}))
	}
	return req
}

func TestRateLimitByViewer_PerUser(t *testing.T) {
	h := RateLimitByViewer(RateLimitConfig{RequestsPerMinute: 2})(okHandler())
	alice := &models.Profile{ID: "u1", Role: models.RoleAdmin}
	bob := &models.Profile{ID: "u2", Role: models.RoleAdmin}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, deleteRequest("10.0.0.1:1234", alice))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, deleteRequest("10.0.0.1:1234", alice))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// same address, different user
	w = httptest.NewRecorder()
	h.ServeHTTP(w, deleteRequest("10.0.0.1:1234", bob))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitByViewer_AnonymousByIP(t *testing.T) {
	h := RateLimitByViewer(RateLimitConfig{RequestsPerMinute: 1})(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, deleteRequest("192.0.2.7:1000", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, deleteRequest("192.0.2.7:2000", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, deleteRequest("192.0.2.8:1000", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultDeleteRateLimit(t *testing.T) {
	assert.Equal(t, 30, DefaultDeleteRateLimit().RequestsPerMinute)
}
