package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/fetch"
	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/services"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	pkglogger "github.com/BradenHooton/classdesk/pkg/logger"
	"github.com/google/uuid"
)

// HeaderViewInstance identifies one mounted list page across its fragment requests
const HeaderViewInstance = "X-View-Instance"

// HTMXScript is the htmx build loaded by the page layout
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

//go:embed templates/*.html
var templateFS embed.FS

var layoutTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html"))

// Confirmer issues and redeems delete confirmations
type Confirmer interface {
	Issue(userID, view, rowID string) (string, error)
	Redeem(token, userID, view, rowID string) error
}

// DeleteRecorder writes the audit trail of confirmed deletes
type DeleteRecorder interface {
	RecordDelete(ctx context.Context, rec services.DeleteRecord)
}

// ListView is a mounted list page with its fragment endpoints
type ListView interface {
	Name() string
	Title() string
	Roles() []string
	Deletable() bool
	Page(w http.ResponseWriter, r *http.Request)
	Table(w http.ResponseWriter, r *http.Request)
	ConfirmDelete(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// ConsoleDeps are the collaborators shared by every list view
type ConsoleDeps struct {
	Confirmations Confirmer
	Audit         DeleteRecorder
	Logger        *slog.Logger
	IPConfig      *pkghttp.IPConfig
	LoginURL      string
	SyncDelay     time.Duration
}

// Console owns the list views and the layout around them
type Console struct {
	confirmations Confirmer
	audit         DeleteRecorder
	auditLog      *pkglogger.AuditLogger
	sequencer     *fetch.Sequencer
	logger        *slog.Logger
	ipConfig      *pkghttp.IPConfig
	loginURL      string
	syncDelay     time.Duration
	views         []ListView
}

// NewConsole creates a Console with no views
func NewConsole(deps ConsoleDeps) *Console {
	delay := deps.SyncDelay
	if delay <= 0 {
		delay = listing.DefaultSyncDelay
	}
	return &Console{
		confirmations: deps.Confirmations,
		audit:         deps.Audit,
		auditLog:      pkglogger.NewAuditLogger(deps.Logger),
		sequencer:     fetch.NewSequencer(),
		logger:        deps.Logger,
		ipConfig:      deps.IPConfig,
		loginURL:      deps.LoginURL,
		syncDelay:     delay,
	}
}

// Register adds views in navigation order
func (c *Console) Register(views ...ListView) {
	c.views = append(c.views, views...)
}

// Views returns the registered views
func (c *Console) Views() []ListView {
	return c.views
}

// NavItem is one entry of the console navigation
type NavItem struct {
	Title   string
	Href    string
	Current bool
}

// Nav lists the views the user may open
func (c *Console) Nav(user *models.Profile, current string) []NavItem {
	var items []NavItem
	for _, v := range c.views {
		if !user.HasRole(v.Roles()...) {
			continue
		}
		items = append(items, NavItem{Title: v.Title(), Href: viewPath(v.Name()), Current: v.Name() == current})
	}
	return items
}

// Home handles GET /admin by sending the user to the first view they may open
func (c *Console) Home(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	nav := c.Nav(session.User, "")
	if len(nav) == 0 {
		pkghttp.WriteForbidden(w, "no views available for this role")
		return
	}
	http.Redirect(w, r, nav[0].Href, http.StatusSeeOther)
}

type layoutData struct {
	Title    string
	User     *models.Profile
	Nav      []NavItem
	Instance string
	Script   string
	Content  template.HTML
}

// renderPage writes content inside the console layout. Every page gets a fresh
// view instance id that htmx sends back with each fragment request.
func (c *Console) renderPage(w http.ResponseWriter, r *http.Request, view, title string, content template.HTML) {
	session := auth.SessionFromContext(r.Context())
	data := layoutData{
		Title:    title,
		User:     session.User,
		Nav:      c.Nav(session.User, view),
		Instance: uuid.NewString(),
		Script:   HTMXScript,
		Content:  content,
	}

	var buf bytes.Buffer
	if err := layoutTemplate.ExecuteTemplate(&buf, "layout", data); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to render page", slog.String("view", view), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "failed to render page")
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func viewPath(name string) string {
	return "/admin/" + name
}
