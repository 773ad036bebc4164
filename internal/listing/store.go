package listing

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/classdesk/internal/debounce"
)

// DefaultSyncDelay is how long URL updates are held back while filters keep changing
const DefaultSyncDelay = 300 * time.Millisecond

// URLSyncer replaces the query string of the page URL without adding a
// history entry
type URLSyncer interface {
	ReplaceQuery(values url.Values)
}

// SyncFunc adapts a function to URLSyncer
type SyncFunc func(values url.Values)

// ReplaceQuery calls f(values)
func (f SyncFunc) ReplaceQuery(values url.Values) { f(values) }

// Patch is a partial update of Criteria; nil fields are left unchanged
type Patch struct {
	Search *string
	Type   *string
	Role   *string
	Page   *int
	Limit  *int
}

// Empty reports whether the patch changes nothing
func (p Patch) Empty() bool {
	return p.Search == nil && p.Type == nil && p.Role == nil && p.Page == nil && p.Limit == nil
}

func (p Patch) touchesFilters() bool {
	return p.Search != nil || p.Type != nil || p.Role != nil
}

// PaginationPatch is a partial update of the pagination metadata, typically
// taken from a fetch response
type PaginationPatch struct {
	Page  *int
	Limit *int
	Total *int
}

// PatchFrom builds a PaginationPatch carrying every field of p
func PatchFrom(p Pagination) PaginationPatch {
	return PaginationPatch{Page: &p.Page, Limit: &p.Limit, Total: &p.Total}
}

// Store is the single source of truth for the criteria of one list view.
// Changes are mirrored to the page URL through a debounced URLSyncer.
type Store struct {
	view   View
	syncer URLSyncer
	timer  *debounce.Timer

	mu            sync.Mutex
	criteria      Criteria
	pagination    Pagination
	hasPagination bool
	lastSynced    string
}

// NewStore initializes a store from the current URL query values
func NewStore(v View, values url.Values, syncer URLSyncer, delay time.Duration) *Store {
	c := Parse(v, values)
	return &Store{
		view:       v,
		syncer:     syncer,
		timer:      debounce.New(delay),
		criteria:   c,
		lastSynced: EncodeURL(v, c).Encode(),
	}
}

// View returns the view the store was created for
func (s *Store) View() View {
	return s.view
}

// Criteria returns a snapshot of the current criteria
func (s *Store) Criteria() Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Pagination returns the last known pagination metadata; ok is false before
// the first UpdatePagination
func (s *Store) Pagination() (p Pagination, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination, s.hasPagination
}

// Query builds the request query for the current criteria
func (s *Store) Query() RequestQuery {
	return BuildQuery(s.view, s.Criteria())
}

// UpdateFilters merges p into the criteria. Changing search, type or role
// sends the view back to page 1 unless p sets the page itself.
func (s *Store) UpdateFilters(p Patch) Criteria {
	s.mu.Lock()
	c := s.criteria

	if p.Search != nil {
		c.Search = strings.TrimSpace(*p.Search)
	}
	if p.Type != nil {
		c.Type = s.view.normalizeType(*p.Type)
	}
	if p.Role != nil {
		c.Role = s.view.normalizeRole(*p.Role)
	}
	if p.Limit != nil {
		c.Limit = s.view.normalizeLimit(*p.Limit)
	}
	switch {
	case p.Page != nil:
		c.Page = normalizePage(*p.Page)
	case p.touchesFilters():
		c.Page = 1
	}

	changed := c != s.criteria
	s.criteria = c
	s.mu.Unlock()

	if changed {
		s.timer.Arm(s.sync)
	}
	return c
}

// UpdatePagination merges fetch metadata, recomputes the page count and
// clamps the current page. Page and limit are mirrored back into the criteria.
func (s *Store) UpdatePagination(p PaginationPatch) Pagination {
	s.mu.Lock()
	c := s.criteria

	m := s.pagination
	m.Page = c.Page
	m.Limit = c.Limit
	if p.Page != nil {
		m.Page = *p.Page
	}
	if p.Limit != nil {
		m.Limit = s.view.normalizeLimit(*p.Limit)
	}
	if p.Total != nil {
		m.Total = *p.Total
	}
	m = NewPagination(m.Page, m.Limit, m.Total)

	s.pagination = m
	s.hasPagination = true

	c.Page = m.Page
	c.Limit = m.Limit
	changed := c != s.criteria
	s.criteria = c
	s.mu.Unlock()

	if changed {
		s.timer.Arm(s.sync)
	}
	return m
}

// Flush writes a pending URL update now
func (s *Store) Flush() {
	s.timer.Flush()
}

// Close drops any pending URL update; the store must not be used afterwards
func (s *Store) Close() {
	s.timer.Stop()
}

func (s *Store) sync() {
	s.mu.Lock()
	values := EncodeURL(s.view, s.criteria)
	encoded := values.Encode()
	if encoded == s.lastSynced {
		s.mu.Unlock()
		return
	}
	s.lastSynced = encoded
	s.mu.Unlock()

	if s.syncer != nil {
		s.syncer.ReplaceQuery(values)
	}
}
