package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/classdesk/internal/apiclient"
	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/database"
	"github.com/BradenHooton/classdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/classdesk/internal/middleware"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/repositories"
	"github.com/BradenHooton/classdesk/internal/routes"
	"github.com/BradenHooton/classdesk/internal/services"
)

// FakePlatform serves the subset of the platform REST API the console uses
type FakePlatform struct {
	Server *httptest.Server

	mu            sync.Mutex
	sessions      map[string]models.Profile
	announcements []models.Announcement
	deletes       []string
}

// NewFakePlatform starts a platform API holding announcements
func NewFakePlatform(announcements []models.Announcement) *FakePlatform {
	f := &FakePlatform{
		sessions:      map[string]models.Profile{},
		announcements: announcements,
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", f.profile)
		r.Get("/announcements", f.listAnnouncements)
		r.Get("/announcements/{id}", f.getAnnouncement)
		r.Delete("/announcements/{id}", f.deleteAnnouncement)
	})
	f.Server = httptest.NewServer(r)
	return f
}

// Login registers a session cookie value for user
func (f *FakePlatform) Login(sid string, user models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sid] = user
}

// Deletes returns the ids deleted so far
func (f *FakePlatform) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *FakePlatform) session(r *http.Request) (models.Profile, bool) {
	c, err := r.Cookie(auth.DefaultSessionCookie)
	if err != nil {
		return models.Profile{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.sessions[c.Value]
	return user, ok
}

func (f *FakePlatform) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := f.session(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"user": user})
}

func (f *FakePlatform) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.session(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	f.mu.Lock()
	var matched []models.Announcement
	for _, a := range f.announcements {
		if t := q.Get("type"); t != "" && a.Type != t {
			continue
		}
		if s := q.Get("search"); s != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(s)) {
			continue
		}
		matched = append(matched, a)
	}
	f.mu.Unlock()

	start := min(max(page-1, 0)*limit, len(matched))
	end := min(start+limit, len(matched))
	writeJSON(w, map[string]any{
		"items": matched[start:end],
		"pagination": map[string]int{
			"page":       page,
			"limit":      limit,
			"total":      len(matched),
			"totalPages": (len(matched) + limit - 1) / limit,
		},
	})
}

func (f *FakePlatform) getAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.announcements {
		if a.ID == id {
			writeJSON(w, a)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *FakePlatform) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	for i, a := range f.announcements {
		if a.ID == id {
			f.announcements = append(f.announcements[:i], f.announcements[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server    *httptest.Server
	Platform  *FakePlatform
	DB        *database.DB
	AuditRepo *repositories.AuditLogRepository
	Logger    *slog.Logger
}

// NewTestServer wires the console the way main does, against the fake platform
func NewTestServer(db *database.DB, platform *FakePlatform) (*TestServer, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auditRepo := repositories.NewAuditLogRepository(db)
	auditService := services.NewAuditService(auditRepo, logger)

	client, err := apiclient.New(platform.Server.URL+"/api", 5*time.Second)
	if err != nil {
		return nil, err
	}

	console := handlers.NewConsole(handlers.ConsoleDeps{
		Confirmations: auth.NewConfirmationManager("integration-confirmation-secret-42", time.Minute),
		Audit:         auditService,
		Logger:        logger,
		LoginURL:      "/login",
		SyncDelay:     time.Minute,
	})
	handlers.RegisterViews(console, handlers.NewSources(client, auditService))

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(middlewareCustom.SecureLogger(logger, nil))
	r.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(r, console, handlers.NewHealthHandler(db), client, auth.CookieConfig{}, "/login",
		middlewareCustom.DefaultDeleteRateLimit(), logger)

	return &TestServer{
		Server:    httptest.NewServer(r),
		Platform:  platform,
		DB:        db,
		AuditRepo: auditRepo,
		Logger:    logger,
	}, nil
}

// Close shuts down the console and the fake platform
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Platform.Server.Close()
}

// Client returns an HTTP client carrying the platform session sid that does
// not follow redirects
func (ts *TestServer) Client(sid string) *http.Client {
	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse(ts.Server.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: auth.DefaultSessionCookie, Value: sid, Path: "/"}})
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// HTMX issues an htmx fragment request from the page at currentPath
func (ts *TestServer) HTMX(client *http.Client, method, path, currentPath string, form url.Values) (*http.Response, string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", ts.Server.URL+currentPath)
	req.Header.Set(handlers.HeaderViewInstance, "integration")
	req.Header.Set("Origin", ts.Server.URL)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp, string(raw), err
}
