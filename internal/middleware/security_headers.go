package middleware

import "net/http"

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
	// ScriptSources are extra script origins, such as the htmx CDN
	ScriptSources string
}

// SecurityHeaders returns a middleware that adds security headers to all responses
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	production := config.Env == "production"

	scripts := "'self'"
	if config.ScriptSources != "" {
		scripts += " " + config.ScriptSources
	}

	var csp string
	if production {
		csp = "default-src 'self'; " +
			"script-src " + scripts + "; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	} else {
		// Development allows live reload over plain http and websockets
		csp = "default-src 'self' http: ws:; " +
			"script-src " + scripts + " 'unsafe-inline' http:; " +
			"style-src 'self' 'unsafe-inline' http:; " +
			"img-src 'self' data: http: https:; " +
			"connect-src 'self' http: ws:; " +
			"frame-ancestors 'self'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")

			// Only behind TLS
			if production && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// Console pages carry per-user data
			h.Set("Cache-Control", "no-store")
			h.Add("Vary", "HX-Request")

			next.ServeHTTP(w, r)
		})
	}
}
