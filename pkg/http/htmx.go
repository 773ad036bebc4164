package http

import (
	"net/http"
	"net/url"
)

// htmx request and response headers
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXTarget     = "HX-Target"
	HeaderHXReplaceURL = "HX-Replace-Url"
	HeaderHXTrigger    = "HX-Trigger"
	HeaderHXRedirect   = "HX-Redirect"
	HeaderHXReswap     = "HX-Reswap"
)

// IsHTMX reports whether r was issued by htmx
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// CurrentQuery returns the query of the page URL the htmx request was issued
// from. It reports false for non-htmx requests, an unparsable URL, or a page
// on another path prefix than pathPrefix.
func CurrentQuery(r *http.Request, pathPrefix string) (url.Values, bool) {
	raw := r.Header.Get(HeaderHXCurrentURL)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path != pathPrefix {
		return nil, false
	}
	return u.Query(), true
}

// ReplaceURL tells htmx to replace the browser URL without a history entry
func ReplaceURL(w http.ResponseWriter, path string, query url.Values) {
	u := url.URL{Path: path, RawQuery: query.Encode()}
	w.Header().Set(HeaderHXReplaceURL, u.String())
}

// Trigger fires a client-side event once the response is swapped in
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Set(HeaderHXTrigger, event)
}

// NoSwap answers an htmx request without replacing any content
func NoSwap(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
