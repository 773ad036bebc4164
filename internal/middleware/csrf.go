package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
)

// SameOrigin rejects state-changing requests whose Origin (or Referer when
// Origin is absent) does not match the request host
func SameOrigin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			source := r.Header.Get("Origin")
			if source == "" {
				source = r.Header.Get("Referer")
			}

			u, err := url.Parse(source)
			if source == "" || err != nil || u.Host != r.Host {
				logger.Warn("cross-origin request rejected",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("origin", source),
				)
				pkghttp.WriteForbidden(w, "cross-origin request rejected")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
