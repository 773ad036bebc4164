package middleware

import (
	"net/http"
	"time"

	"github.com/BradenHooton/classdesk/internal/auth"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultDeleteRateLimit returns the default limit for confirmed deletes
func DefaultDeleteRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
	}
}

// RateLimitByViewer limits requests per signed-in user, falling back to the
// client IP for anonymous requests
func RateLimitByViewer(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(viewerKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "too many requests, try again in a minute")
		}),
	)
}

func viewerKey(r *http.Request) (string, error) {
	if s := auth.SessionFromContext(r.Context()); s.Authenticated() {
		return "user:" + s.User.ID, nil
	}
	ip, err := httprate.KeyByRealIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}
