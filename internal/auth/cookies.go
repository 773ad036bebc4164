package auth

import (
	"errors"
	"net/http"
)

// DefaultSessionCookie is the name of the platform session cookie
const DefaultSessionCookie = "connect.sid"

// ErrNoSessionCookie is returned when the request carries no session cookie
var ErrNoSessionCookie = errors.New("no session cookie")

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Name     string // Platform session cookie name
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultSessionCookie
	}
	return c.Name
}

// ReadSessionCookie returns the raw platform session cookie, ready to be
// forwarded to the API
func ReadSessionCookie(r *http.Request, config CookieConfig) (string, error) {
	cookie, err := r.Cookie(config.name())
	if err != nil || cookie.Value == "" {
		return "", ErrNoSessionCookie
	}
	return cookie.String(), nil
}

// ClearSessionCookie clears a session cookie the API no longer accepts
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     config.name(),
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1, // Negative MaxAge deletes the cookie
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
