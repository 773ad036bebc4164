package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", time.Second)
	require.NoError(t, err)
	return c
}

func TestClient_Profile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profile", r.URL.Path)
		assert.Equal(t, "connect.sid=abc", r.Header.Get("Cookie"))
		w.Write([]byte(`{"user":{"id":"u1","name":"Amani","email":"amani@example.com","role":"teacher"}}`))
	})

	p, err := c.Profile(context.Background(), "connect.sid=abc")
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{ID: "u1", Name: "Amani", Email: "amani@example.com", Role: "teacher"}, p)
}

func TestClient_ProfileUnwrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u2","role":"admin"}`))
	})

	p, err := c.Profile(context.Background(), "sid=1")
	require.NoError(t, err)
	assert.Equal(t, "u2", p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, models.ErrUnauthorized},
		{http.StatusForbidden, models.ErrForbidden},
		{http.StatusNotFound, models.ErrNotFound},
		{http.StatusInternalServerError, models.ErrUpstream},
		{http.StatusTeapot, models.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.Profile(context.Background(), "")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestClient_ProfileEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.Profile(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestCollection_Get(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/posts/p1", r.URL.Path)
		w.Write([]byte(`{"id":"p1","title":"Homework help","author":{"id":"s1"}}`))
	})
	col := NewCollection[models.Post](c, "/posts")

	post, err := col.Get(context.Background(), "sid=1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Homework help", post.Title)
	assert.True(t, post.OwnedBy("s1"))
}

func TestCollection_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/announcements", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "instructional", q.Get("type"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.False(t, q.Has("search"))

		w.Write([]byte(`{
			"items": [{"id":"a1","title":"Midterm"},{"id":"a2","title":"Labs"},{"id":"a3","title":"Reading"}],
			"pagination": {"page":2,"limit":5,"total":13,"totalPages":3}
		}`))
	})
	col := NewCollection[models.Announcement](c, "/announcements")

	page, err := col.List(context.Background(), "sid=1", listing.RequestQuery{
		Page:    2,
		Limit:   5,
		Filters: map[string]string{"type": "instructional"},
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, "Midterm", page.Items[0].Title)
	assert.Equal(t, listing.Pagination{Page: 2, Limit: 5, Total: 13, TotalPages: 3}, page.Pagination)
}

func TestCollection_ListMissingItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pagination":{"page":1,"limit":5,"total":0,"totalPages":0}}`))
	})

	page, err := NewCollection[models.Post](c, "/posts").List(context.Background(), "", listing.RequestQuery{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestCollection_ListInvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, err := NewCollection[models.Post](c, "/posts").List(context.Background(), "", listing.RequestQuery{Page: 1, Limit: 5})
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestCollection_Delete(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/posts/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, NewCollection[models.Post](c, "/posts").Delete(context.Background(), "sid=1", "p1"))
	assert.Equal(t, 1, calls)
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Profile(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
