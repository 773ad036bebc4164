package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/BradenHooton/classdesk/internal/apiclient"
	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/fetch"
	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/services"
	"github.com/BradenHooton/classdesk/internal/table"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	pkglogger "github.com/BradenHooton/classdesk/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// ListRefreshEvent makes every mounted table region reload
const ListRefreshEvent = "list-refresh"

// Lister fetches one page of rows
type Lister[T any] interface {
	List(ctx context.Context, cookie string, q listing.RequestQuery) (*listing.Page[T], error)
}

// Deleter removes one row
type Deleter interface {
	Delete(ctx context.Context, cookie, id string) error
}

// Getter fetches one row by id
type Getter[T any] interface {
	Get(ctx context.Context, cookie, id string) (*T, error)
}

var errDeleteRefused = fmt.Errorf("%w: delete not allowed for this row", models.ErrForbidden)

// FilterConfig is a select shown in the filter bar. Field is the type or role
// parameter of the view.
type FilterConfig struct {
	Field   string
	Label   string
	Options []table.Option
}

// ListConfig describes one list page
type ListConfig[T any] struct {
	View       listing.View
	Title      string
	Noun       string
	Roles      []string
	Searchable bool
	Filters    []FilterConfig
	Columns    []table.Column[T]
	Lister     Lister[T]
	// Deleter is nil for read-only views
	Deleter Deleter
	// Getter loads the row a delete is confirmed for; required with Deleter
	Getter     Getter[T]
	RowID      func(T) string
	RowTitle   func(T) string
	HideDelete func(row T, viewer *models.Profile) bool
}

// ListHandler serves a list page and its fragments for rows of type T
type ListHandler[T any] struct {
	console *Console
	cfg     ListConfig[T]
	path    string
}

// NewListHandler creates the handler of one list view. It panics on an
// invalid view definition.
func NewListHandler[T any](console *Console, cfg ListConfig[T]) *ListHandler[T] {
	if err := cfg.View.Validate(); err != nil {
		panic(err)
	}
	if cfg.Deleter != nil && cfg.Getter == nil {
		panic(fmt.Sprintf("view %q: a deletable view needs a Getter", cfg.View.Name))
	}
	if cfg.Noun == "" {
		cfg.Noun = "row"
	}
	return &ListHandler[T]{console: console, cfg: cfg, path: viewPath(cfg.View.Name)}
}

func (h *ListHandler[T]) Name() string    { return h.cfg.View.Name }
func (h *ListHandler[T]) Title() string   { return h.cfg.Title }
func (h *ListHandler[T]) Roles() []string { return h.cfg.Roles }
func (h *ListHandler[T]) Deletable() bool { return h.cfg.Deleter != nil }

func (h *ListHandler[T]) tablePath() string { return h.path + "/table" }

func (h *ListHandler[T]) tableLink(values url.Values) table.Link {
	return table.Link{HXGet: h.tablePath() + "?" + values.Encode()}
}

func (h *ListHandler[T]) pageHref(c listing.Criteria) string {
	values := listing.EncodeURL(h.cfg.View, c)
	if len(values) == 0 {
		return h.path
	}
	return h.path + "?" + values.Encode()
}

// Page handles GET /admin/{view}: the layout with a loading table that
// fetches its rows right after the page is shown
func (h *ListHandler[T]) Page(w http.ResponseWriter, r *http.Request) {
	c := listing.Parse(h.cfg.View, r.URL.Query())

	content, err := table.RenderHTML(h.table(r, c, func(t *table.Table[T]) {
		t.Loading = true
	}))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.console.renderPage(w, r, h.Name(), h.cfg.Title, content)
}

// Table handles GET /admin/{view}/table. The criteria come from the page URL
// htmx reports, updated by the control intent of the request. Only the latest
// fetch of a mounted page is rendered; superseded ones answer 204.
func (h *ListHandler[T]) Table(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	values, ok := pkghttp.CurrentQuery(r, h.path)
	if !ok {
		values = r.URL.Query()
	}

	var (
		syncMu   sync.Mutex
		replaced url.Values
	)
	store := listing.NewStore(h.cfg.View, values, listing.SyncFunc(func(v url.Values) {
		syncMu.Lock()
		replaced = v
		syncMu.Unlock()
	}), h.console.syncDelay)
	defer store.Close()

	store.UpdateFilters(listing.ParseIntent(h.cfg.View, r.URL.Query()))

	key := session.User.ID + "|" + h.Name() + "|" + r.Header.Get(HeaderViewInstance)
	ctx, ticket := h.console.sequencer.Begin(r.Context(), key)
	defer ticket.Done()

	var (
		page *listing.Page[T]
		err  error
	)
	// a page clamped by the reported total is fetched once more, so rows
	// that remain are shown instead of an empty page
	for attempt := 0; attempt < 2; attempt++ {
		requested := store.Query().Page
		page, err = h.cfg.Lister.List(ctx, session.Cookie, store.Query())
		if !ticket.Current() {
			pkghttp.NoSwap(w)
			return
		}
		if errors.Is(err, models.ErrUnauthorized) {
			h.sessionExpired(w, r)
			return
		}
		if err != nil {
			h.console.logger.ErrorContext(r.Context(), "failed to fetch list",
				slog.String("view", h.Name()),
				slog.Int("upstream_status", apiclient.StatusOf(err)),
				slog.Any("error", err),
			)
			break
		}
		m := store.UpdatePagination(listing.PatchFrom(page.Pagination))
		if m.Page == requested || m.Total == 0 {
			break
		}
	}
	state := fetch.Resolve(err)

	store.Flush()
	syncMu.Lock()
	if replaced != nil && pkghttp.IsHTMX(r) {
		pkghttp.ReplaceURL(w, h.path, replaced)
	}
	syncMu.Unlock()

	c := store.Criteria()
	tbl := h.table(r, c, func(t *table.Table[T]) {
		if state == fetch.Errored {
			t.Failed = true
			return
		}
		t.Data = page.Items
		if m, ok := store.Pagination(); ok {
			t.Pagination = h.pagination(c, m)
		}
	})

	var buf bytes.Buffer
	if err := table.RenderRegion(&buf, tbl); err != nil {
		h.renderError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// table assembles the renderer input shared by the page and the fragment
func (h *ListHandler[T]) table(r *http.Request, c listing.Criteria, state func(*table.Table[T])) table.Table[T] {
	session := auth.SessionFromContext(r.Context())
	refresh := h.tableLink(listing.IntentValues(listing.OpRefresh))

	t := table.Table[T]{
		ID:        h.Name(),
		Columns:   h.cfg.Columns,
		Source:    refresh,
		Retry:     table.Link{Href: h.pageHref(c), HXGet: refresh.HXGet},
		FilterBar: h.filterBar(c),
	}
	if h.cfg.Deleter != nil && h.cfg.RowID != nil {
		t.Actions = &table.Actions[T]{
			Delete: func(row T) table.Link {
				p := h.path + "/" + url.PathEscape(h.cfg.RowID(row)) + "/delete"
				return table.Link{Href: p, HXGet: p}
			},
		}
		if h.cfg.HideDelete != nil {
			t.Actions.HideDelete = func(row T) bool { return h.cfg.HideDelete(row, session.User) }
		}
	}
	state(&t)
	return t
}

func (h *ListHandler[T]) filterBar(c listing.Criteria) *table.FilterBar {
	if !h.cfg.Searchable && len(h.cfg.Filters) == 0 {
		return nil
	}

	cleared := c
	cleared.Search = ""
	cleared.Page = 1

	fb := &table.FilterBar{
		Searchable: h.cfg.Searchable,
		Search:     c.Search,
		OnSearch:   h.tableLink(listing.IntentValues(listing.OpSearch)),
		OnClear:    table.Link{Href: h.pageHref(cleared), HXGet: h.tableLink(listing.IntentValues(listing.OpClear)).HXGet},
	}
	for _, f := range h.cfg.Filters {
		selected := c.Type
		if f.Field == h.cfg.View.RoleParamName() {
			selected = c.Role
		}
		fb.Filters = append(fb.Filters, table.Filter{
			Field:    f.Field,
			Label:    f.Label,
			Options:  f.Options,
			Selected: selected,
			OnFilter: func(field string) table.Link {
				return h.tableLink(listing.IntentValues(listing.OpFilter, listing.ParamField, field))
			},
		})
	}
	return fb
}

func (h *ListHandler[T]) pagination(c listing.Criteria, m listing.Pagination) *table.Pagination {
	return &table.Pagination{
		CurrentPage: m.Page,
		TotalPages:  m.TotalPages,
		OnPageChange: func(page int) table.Link {
			target := c
			target.Page = page
			return table.Link{
				Href:  h.pageHref(target),
				HXGet: h.tableLink(listing.IntentValues(listing.OpPage, listing.ParamPage, strconv.Itoa(page))).HXGet,
			}
		},
	}
}

// ConfirmDelete handles GET /admin/{view}/{id}/delete by showing the
// confirmation dialog. Nothing is deleted until the dialog is submitted.
func (h *ListHandler[T]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := ValidateRowID(id); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	row, err := h.deletableRow(r.Context(), session, id)
	if err != nil {
		if errors.Is(err, errDeleteRefused) {
			h.denied(r, session, id, err)
		}
		h.deleteFailed(w, r, id, err)
		return
	}

	token, err := h.console.confirmations.Issue(session.User.ID, h.Name(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	message := fmt.Sprintf("This %s will be permanently deleted. This cannot be undone.", h.cfg.Noun)
	if title := h.rowTitle(row); title != "" {
		message = fmt.Sprintf("%q will be permanently deleted. This cannot be undone.", title)
	}
	confirm := table.Confirm{
		Title:   "Delete " + h.cfg.Noun,
		Message: message,
		Action:  h.path + "/" + url.PathEscape(id) + "/delete",
		Token:   token,
		Cancel:  h.path,
		Inline:  pkghttp.IsHTMX(r),
	}

	var buf bytes.Buffer
	if err := table.RenderConfirm(&buf, confirm); err != nil {
		h.renderError(w, r, err)
		return
	}
	if confirm.Inline {
		writeHTML(w, http.StatusOK, buf.Bytes())
		return
	}
	h.console.renderPage(w, r, h.Name(), confirm.Title, template.HTML(buf.String()))
}

// Delete handles POST /admin/{view}/{id}/delete. A confirmation token is
// redeemed once, so each confirmed dialog reaches the platform API at most once.
func (h *ListHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		pkghttp.WriteBadRequest(w, "invalid form")
		return
	}
	form := DeleteForm{ID: chi.URLParam(r, "id"), Token: r.PostForm.Get("token")}
	if err := ValidateRequest(form); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.console.confirmations.Redeem(form.Token, session.User.ID, h.Name(), form.ID); err != nil {
		h.denied(r, session, form.ID, err)
		status := http.StatusForbidden
		message := "This confirmation is not valid. Reload the list and try again."
		if errors.Is(err, auth.ErrConfirmationUsed) {
			status = http.StatusConflict
			message = "This delete was already confirmed."
		}
		h.notice(w, r, status, table.Notice{Kind: "error", Message: message})
		return
	}

	// the row may have changed hands since the dialog was opened
	row, err := h.deletableRow(r.Context(), session, form.ID)
	if err != nil {
		if errors.Is(err, errDeleteRefused) {
			h.denied(r, session, form.ID, err)
		}
		h.deleteFailed(w, r, form.ID, err)
		return
	}

	err = h.cfg.Deleter.Delete(r.Context(), session.Cookie, form.ID)
	h.console.audit.RecordDelete(r.Context(), services.DeleteRecord{
		ActorID:   session.User.ID,
		ActorRole: session.User.Role,
		View:      h.Name(),
		RowID:     form.ID,
		Title:     h.rowTitle(row),
		Status:    deleteStatus(err),
		Err:       err,
		IPAddress: pkghttp.ExtractClientIP(r, h.console.ipConfig),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.deleteFailed(w, r, form.ID, err)
		return
	}

	if !pkghttp.IsHTMX(r) {
		http.Redirect(w, r, h.path, http.StatusSeeOther)
		return
	}
	pkghttp.Trigger(w, ListRefreshEvent)
	h.notice(w, r, http.StatusOK, table.Notice{Kind: "success", Message: fmt.Sprintf("The %s was deleted.", h.cfg.Noun)})
}

// deletableRow fetches the row behind id and refuses it with errDeleteRefused
// when the viewer may not delete it
func (h *ListHandler[T]) deletableRow(ctx context.Context, session auth.Session, id string) (T, error) {
	var zero T
	row, err := h.cfg.Getter.Get(ctx, session.Cookie, id)
	if err != nil {
		return zero, err
	}
	if h.cfg.HideDelete != nil && h.cfg.HideDelete(*row, session.User) {
		return zero, errDeleteRefused
	}
	return *row, nil
}

func (h *ListHandler[T]) rowTitle(row T) string {
	if h.cfg.RowTitle == nil {
		return ""
	}
	return h.cfg.RowTitle(row)
}

// deleteFailed answers a confirmation or delete that could not go ahead
func (h *ListHandler[T]) deleteFailed(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		h.sessionExpired(w, r)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.Trigger(w, ListRefreshEvent)
		h.notice(w, r, http.StatusNotFound, table.Notice{Kind: "error", Message: fmt.Sprintf("The %s no longer exists.", h.cfg.Noun)})
	case errors.Is(err, models.ErrForbidden):
		h.notice(w, r, http.StatusForbidden, table.Notice{Kind: "error", Message: fmt.Sprintf("You may not delete this %s.", h.cfg.Noun)})
	default:
		h.console.logger.ErrorContext(r.Context(), "failed to delete row",
			slog.String("view", h.Name()),
			slog.String("row_id", id),
			slog.Any("error", err),
		)
		h.notice(w, r, http.StatusBadGateway, table.Notice{Kind: "error", Message: "Delete failed. Try again later."})
	}
}

// denied writes an access-denied audit event for a refused delete
func (h *ListHandler[T]) denied(r *http.Request, session auth.Session, id string, err error) {
	h.console.auditLog.Log(r.Context(), pkglogger.AuditEvent{
		EventType:     models.AuditEventTypeAccessDenied,
		UserID:        session.User.ID,
		Role:          session.User.Role,
		View:          h.Name(),
		RowID:         id,
		IPAddress:     pkghttp.ExtractClientIP(r, h.console.ipConfig),
		Success:       false,
		FailureReason: err.Error(),
	})
}

// notice answers a dialog submission. htmx only swaps 2xx responses, so
// htmx requests get the notice with 200 and the real status in the log.
func (h *ListHandler[T]) notice(w http.ResponseWriter, r *http.Request, status int, n table.Notice) {
	var buf bytes.Buffer
	if err := table.RenderNotice(&buf, n); err != nil {
		h.renderError(w, r, err)
		return
	}
	if pkghttp.IsHTMX(r) {
		writeHTML(w, http.StatusOK, buf.Bytes())
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (h *ListHandler[T]) sessionExpired(w http.ResponseWriter, r *http.Request) {
	if pkghttp.IsHTMX(r) {
		w.Header().Set(pkghttp.HeaderHXRedirect, h.console.loginURL)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, h.console.loginURL, http.StatusSeeOther)
}

func (h *ListHandler[T]) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.console.logger.ErrorContext(r.Context(), "failed to render view",
		slog.String("view", h.Name()),
		slog.Any("error", err),
	)
	pkghttp.WriteInternalError(w, "failed to render view")
}

// deleteStatus is the upstream status recorded for a delete
func deleteStatus(err error) int {
	if err == nil {
		return http.StatusNoContent
	}
	return apiclient.StatusOf(err)
}
