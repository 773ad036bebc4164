package logger

import "strings"

// SanitizedEmail masks an email address for logging (e.g., "u***@*******.com")
func SanitizedEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if len(username) > 1 {
		username = username[:1] + strings.Repeat("*", len(username)-1)
	}

	// Mask all but the TLD
	parts := strings.Split(domain, ".")
	if len(parts) > 1 {
		for i := range parts[:len(parts)-1] {
			parts[i] = strings.Repeat("*", len(parts[i]))
		}
		domain = strings.Join(parts, ".")
	}

	return username + "@" + domain
}

var sensitiveParams = []string{"password", "token", "secret", "api_key", "apikey", "email", "auth", "csrf", "sid"}

// SanitizeQueryString reports whether rawQuery mentions a sensitive parameter
// and should be redacted as a whole
func SanitizeQueryString(rawQuery string) bool {
	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
