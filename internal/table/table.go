// Package table renders list views of arbitrary row types: loading skeletons,
// empty and failed states, row actions, filter bar and page controls.
package table

import (
	"fmt"
	"html/template"
	"time"
)

// SkeletonRows is the number of placeholder rows shown while loading
const SkeletonRows = 5

// DefaultSearchDebounce is how long the search box waits for typing to stop
const DefaultSearchDebounce = 300 * time.Millisecond

// Column describes how one column is labelled and read from a row. Cell, when
// set, overrides the accessor and returns trusted markup.
type Column[T any] struct {
	Header   string
	Accessor Accessor[T]
	Cell     func(T) template.HTML
}

// Action is an extra per-row action
type Action[T any] struct {
	Label string
	Link  func(T) Link
}

// Actions configures the per-row action column. View and Edit fire on click;
// Delete opens a confirmation dialog first.
type Actions[T any] struct {
	View       func(T) Link
	Edit       func(T) Link
	Delete     func(T) Link
	HideDelete func(T) bool
	Extra      []Action[T]
}

func (a *Actions[T]) configured() bool {
	return a != nil && (a.View != nil || a.Edit != nil || a.Delete != nil || len(a.Extra) > 0)
}

// Option is one choice of a filter select
type Option struct {
	Value string
	Label string
}

// Filter is a single-select filter. OnFilter returns the control endpoint for
// the field; the selected value is sent as the "value" parameter.
type Filter struct {
	Field    string
	Label    string
	Options  []Option
	Selected string
	OnFilter func(field string) Link
}

// FilterBar configures the search box and filters above the table. OnSearch
// receives the typed text as the "q" parameter.
type FilterBar struct {
	Searchable     bool
	Search         string
	SearchDebounce time.Duration
	OnSearch       Link
	OnClear        Link
	Filters        []Filter
}

// Table is the input of the renderer
type Table[T any] struct {
	ID         string
	Columns    []Column[T]
	Data       []T
	Loading    bool
	Failed     bool
	Retry      Link
	Source     Link
	Actions    *Actions[T]
	Pagination *Pagination
	FilterBar  *FilterBar
}

// ActionView is a rendered row action
type ActionView struct {
	Label  string
	Link   Link
	Dialog bool
}

// RowView is a rendered data row
type RowView struct {
	Cells   []template.HTML
	Actions []ActionView
}

// FilterView is a rendered filter select
type FilterView struct {
	Field    string
	Label    string
	Options  []Option
	Selected string
	Link     Link
}

// FilterBarView is the render model of the filter bar
type FilterBarView struct {
	Target     string
	Searchable bool
	Search     string
	Trigger    string
	OnSearch   Link
	OnClear    Link
	Filters    []FilterView
}

// View is the render model of a table
type View struct {
	ID         string
	Headers    []string
	HasActions bool
	ColSpan    int
	Loading    bool
	Failed     bool
	Empty      bool
	Skeleton   [][]struct{}
	Rows       []RowView
	Retry      Link
	Source     Link
	Pager      *PagerView
	FilterBar  *FilterBarView
}

// RegionID is the element id swapped by table controls
func (v View) RegionID() string { return v.ID + "-region" }

// DialogID is the element id receiving confirmation dialogs
func (v View) DialogID() string { return v.ID + "-dialog" }

// Build computes the render model. Loading wins over every other state, a
// failed fetch wins over the empty state.
func Build[T any](t Table[T]) View {
	id := t.ID
	if id == "" {
		id = "table"
	}

	v := View{
		ID:         id,
		HasActions: t.Actions.configured(),
		Retry:      t.Retry,
		Source:     t.Source,
	}
	for _, c := range t.Columns {
		v.Headers = append(v.Headers, c.Header)
	}
	v.ColSpan = len(t.Columns)
	if v.HasActions {
		v.ColSpan++
	}

	switch {
	case t.Loading:
		v.Loading = true
		v.Skeleton = make([][]struct{}, SkeletonRows)
		for i := range v.Skeleton {
			v.Skeleton[i] = make([]struct{}, v.ColSpan)
		}
	case t.Failed:
		v.Failed = true
	case len(t.Data) == 0:
		v.Empty = true
	default:
		v.Rows = make([]RowView, 0, len(t.Data))
		for _, row := range t.Data {
			v.Rows = append(v.Rows, buildRow(t, row, v.HasActions))
		}
	}

	if !v.Loading && !v.Failed {
		v.Pager = buildPager(t.Pagination, "#"+v.RegionID())
	}
	v.FilterBar = buildFilterBar(t.FilterBar, "#"+v.RegionID())

	return v
}

func buildRow[T any](t Table[T], row T, hasActions bool) RowView {
	r := RowView{Cells: make([]template.HTML, 0, len(t.Columns))}
	for _, c := range t.Columns {
		if c.Cell != nil {
			r.Cells = append(r.Cells, c.Cell(row))
			continue
		}
		r.Cells = append(r.Cells, template.HTML(template.HTMLEscapeString(c.Accessor.Resolve(row))))
	}

	if !hasActions {
		return r
	}

	a := t.Actions
	if a.View != nil {
		r.Actions = append(r.Actions, ActionView{Label: "View", Link: a.View(row)})
	}
	if a.Edit != nil {
		r.Actions = append(r.Actions, ActionView{Label: "Edit", Link: a.Edit(row)})
	}
	for _, extra := range a.Extra {
		r.Actions = append(r.Actions, ActionView{Label: extra.Label, Link: extra.Link(row)})
	}
	if a.Delete != nil && (a.HideDelete == nil || !a.HideDelete(row)) {
		r.Actions = append(r.Actions, ActionView{Label: "Delete", Link: a.Delete(row), Dialog: true})
	}
	return r
}

func buildFilterBar(f *FilterBar, target string) *FilterBarView {
	if f == nil {
		return nil
	}

	debounce := f.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	v := &FilterBarView{
		Target:     target,
		Searchable: f.Searchable,
		Search:     f.Search,
		Trigger:    fmt.Sprintf("input changed delay:%dms, search", debounce.Milliseconds()),
		OnSearch:   f.OnSearch,
		OnClear:    f.OnClear,
	}
	for _, filter := range f.Filters {
		fv := FilterView{
			Field:    filter.Field,
			Label:    filter.Label,
			Options:  filter.Options,
			Selected: filter.Selected,
		}
		if filter.OnFilter != nil {
			fv.Link = filter.OnFilter(filter.Field)
		}
		v.Filters = append(v.Filters, fv)
	}
	return v
}
