// Package apiclient talks to the platform REST API on behalf of the signed-in
// viewer, forwarding the viewer's session cookie.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 4 << 20

// StatusError is returned for non-2xx responses. It unwraps to the matching
// model sentinel.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: upstream status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	default:
		return models.ErrUpstream
	}
}

// StatusOf returns the upstream status carried by err, or 0
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Client is a platform API client
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for the API rooted at baseURL. Requests are traced
// through the global OpenTelemetry provider.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Profile returns the user behind the session cookie
func (c *Client) Profile(ctx context.Context, cookie string) (*models.Profile, error) {
	var body struct {
		User *models.Profile `json:"user"`
		models.Profile
	}
	if err := c.do(ctx, http.MethodGet, "/profile", nil, cookie, &body); err != nil {
		return nil, err
	}

	if body.User != nil {
		return body.User, nil
	}
	if body.ID == "" {
		return nil, fmt.Errorf("GET /profile: %w: empty profile", models.ErrUpstream)
	}
	p := body.Profile
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, cookie string, out any) error {
	u := c.base.JoinPath(p)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w: %w", method, p, models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: failed to read body: %w", method, p, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: p, Status: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: invalid json: %w", method, p, models.ErrUpstream, err)
	}
	return nil
}

// Collection is a paginated resource of the API, such as /announcements
type Collection[T any] struct {
	client *Client
	path   string
}

// NewCollection binds the resource at resourcePath to c
func NewCollection[T any](c *Client, resourcePath string) *Collection[T] {
	return &Collection[T]{client: c, path: resourcePath}
}

// Path is the resource path relative to the API root
func (col *Collection[T]) Path() string { return col.path }

// List fetches one page of the collection
func (col *Collection[T]) List(ctx context.Context, cookie string, q listing.RequestQuery) (*listing.Page[T], error) {
	var page listing.Page[T]
	if err := col.client.do(ctx, http.MethodGet, col.path, q.Values(), cookie, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return &page, nil
}

// Get fetches one element of the collection
func (col *Collection[T]) Get(ctx context.Context, cookie, id string) (*T, error) {
	var item T
	if err := col.client.do(ctx, http.MethodGet, path.Join(col.path, id), nil, cookie, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes one element of the collection
func (col *Collection[T]) Delete(ctx context.Context, cookie, id string) error {
	return col.client.do(ctx, http.MethodDelete, path.Join(col.path, id), nil, cookie, nil)
}
