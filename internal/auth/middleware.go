package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/classdesk/internal/models"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	pkglogger "github.com/BradenHooton/classdesk/pkg/logger"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the resolved session in context
	SessionContextKey contextKey = "session"
)

// SessionState is the resolution state of the viewer's session
type SessionState int

const (
	SessionLoading SessionState = iota
	SessionAuthenticated
	SessionAnonymous
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is the viewer of a request. Cookie is forwarded to the platform API.
type Session struct {
	State  SessionState
	User   *models.Profile
	Cookie string
}

// Authenticated reports whether the session carries a resolved user
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.User != nil
}

// ProfileResolver looks up the user behind a platform session cookie.
// It returns models.ErrUnauthorized when the cookie is missing or expired.
type ProfileResolver interface {
	Profile(ctx context.Context, cookie string) (*models.Profile, error)
}

// SessionMiddleware resolves the session once per request and injects it into
// the context. A resolver failure other than an expired session yields 503.
func SessionMiddleware(resolver ProfileResolver, cookies CookieConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := ReadSessionCookie(r, cookies)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Session{State: SessionAnonymous})))
				return
			}

			profile, err := resolver.Profile(r.Context(), cookie)
			switch {
			case err == nil:
				logger.DebugContext(r.Context(), "session resolved",
					slog.String("user_id", profile.ID),
					slog.String("email", pkglogger.SanitizedEmail(profile.Email)),
				)
				session := Session{State: SessionAuthenticated, User: profile, Cookie: cookie}
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
			case errors.Is(err, models.ErrUnauthorized):
				ClearSessionCookie(w, cookies)
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Session{State: SessionAnonymous})))
			default:
				logger.ErrorContext(r.Context(), "failed to resolve session", slog.Any("error", err))
				pkghttp.WriteError(w, http.StatusServiceUnavailable, "session_unavailable", "unable to verify session")
			}
		})
	}
}

// RequireAuthenticated sends anonymous viewers to loginURL. htmx requests get
// an HX-Redirect so the whole page navigates.
func RequireAuthenticated(loginURL string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			switch {
			case session.Authenticated():
				next.ServeHTTP(w, r)
			case session.State == SessionLoading:
				pkghttp.WriteError(w, http.StatusServiceUnavailable, "session_unavailable", "session not resolved")
			case pkghttp.IsHTMX(r):
				w.Header().Set("HX-Redirect", loginURL)
				w.WriteHeader(http.StatusUnauthorized)
			default:
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
			}
		})
	}
}

// RequireRole rejects viewers holding none of roles with 403.
// Must be used after RequireAuthenticated.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if !session.Authenticated() {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}
			if !session.User.HasRole(roles...) {
				pkghttp.WriteForbidden(w, "forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// SessionFromContext returns the session of the request. A context the
// middleware never saw reports SessionLoading.
func SessionFromContext(ctx context.Context) Session {
	s, ok := ctx.Value(SessionContextKey).(Session)
	if !ok {
		return Session{State: SessionLoading}
	}
	return s
}
