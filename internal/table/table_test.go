package table

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type announcement struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Author *author `json:"author"`
}

func announcementColumns() []Column[announcement] {
	return []Column[announcement]{
		{Header: "Title", Accessor: Path[announcement]("title")},
		{Header: "Type", Accessor: Path[announcement]("type")},
		{Header: "Author", Accessor: Path[announcement]("author.name")},
	}
}

func deleteActions() *Actions[announcement] {
	return &Actions[announcement]{
		Delete: func(a announcement) Link {
			return Link{Href: "/admin/announcements/" + a.ID + "/delete", HXGet: "/admin/announcements/" + a.ID + "/delete"}
		},
	}
}

func TestBuild_LoadingWinsOverEmpty(t *testing.T) {
	v := Build(Table[announcement]{Columns: announcementColumns(), Data: []announcement{}, Loading: true})

	assert.True(t, v.Loading)
	assert.False(t, v.Empty)
	require.Len(t, v.Skeleton, SkeletonRows)
	assert.Len(t, v.Skeleton[0], 3)
}

func TestBuild_LoadingIgnoresData(t *testing.T) {
	v := Build(Table[announcement]{
		Columns: announcementColumns(),
		Data:    []announcement{{ID: "1"}},
		Loading: true,
		Actions: deleteActions(),
	})

	assert.Empty(t, v.Rows)
	assert.Len(t, v.Skeleton[0], 4, "skeleton includes the actions column")
	assert.Nil(t, v.Pager)
}

func TestBuild_EmptyState(t *testing.T) {
	for _, data := range [][]announcement{nil, {}} {
		v := Build(Table[announcement]{Columns: announcementColumns(), Data: data})

		assert.True(t, v.Empty)
		assert.False(t, v.Loading)
		assert.Equal(t, 3, v.ColSpan)
	}
}

func TestBuild_FailedState(t *testing.T) {
	v := Build(Table[announcement]{
		Columns:    announcementColumns(),
		Failed:     true,
		Retry:      Link{HXGet: "/admin/announcements/table?op=refresh"},
		Pagination: &Pagination{CurrentPage: 1, TotalPages: 3},
	})

	assert.True(t, v.Failed)
	assert.False(t, v.Empty)
	assert.Nil(t, v.Pager)
	assert.Equal(t, "/admin/announcements/table?op=refresh", v.Retry.HXGet)
}

func TestBuild_RowsUseCellOverride(t *testing.T) {
	cols := announcementColumns()
	cols[1].Cell = func(a announcement) template.HTML {
		return template.HTML(`<span class="badge">` + template.HTMLEscapeString(a.Type) + `</span>`)
	}

	v := Build(Table[announcement]{
		Columns: cols,
		Data:    []announcement{{ID: "1", Title: "<b>Exams</b>", Type: "event", Author: &author{Name: "Zawadi"}}},
	})

	require.Len(t, v.Rows, 1)
	assert.Equal(t, template.HTML("&lt;b&gt;Exams&lt;/b&gt;"), v.Rows[0].Cells[0])
	assert.Equal(t, template.HTML(`<span class="badge">event</span>`), v.Rows[0].Cells[1])
	assert.Equal(t, template.HTML("Zawadi"), v.Rows[0].Cells[2])
	assert.False(t, v.HasActions)
}

func TestBuild_ActionsColumnOnlyWhenConfigured(t *testing.T) {
	v := Build(Table[announcement]{Columns: announcementColumns(), Data: []announcement{{ID: "1"}}, Actions: &Actions[announcement]{}})
	assert.False(t, v.HasActions)

	v = Build(Table[announcement]{Columns: announcementColumns(), Data: []announcement{{ID: "1"}}, Actions: deleteActions()})
	assert.True(t, v.HasActions)
	assert.Equal(t, 4, v.ColSpan)
}

func TestBuild_HideDeletePerRow(t *testing.T) {
	actions := deleteActions()
	actions.View = func(a announcement) Link { return Link{Href: "/a/" + a.ID} }
	actions.HideDelete = func(a announcement) bool { return a.Author == nil || a.Author.ID != "me" }

	v := Build(Table[announcement]{
		Columns: announcementColumns(),
		Data: []announcement{
			{ID: "1", Author: &author{ID: "me"}},
			{ID: "2", Author: &author{ID: "someone-else"}},
		},
		Actions: actions,
	})

	require.Len(t, v.Rows, 2)
	require.Len(t, v.Rows[0].Actions, 2)
	assert.Equal(t, "Delete", v.Rows[0].Actions[1].Label)
	assert.True(t, v.Rows[0].Actions[1].Dialog)
	require.Len(t, v.Rows[1].Actions, 1)
	assert.Equal(t, "View", v.Rows[1].Actions[0].Label)
}

func TestBuild_FilterBarDebounce(t *testing.T) {
	v := Build(Table[announcement]{
		ID: "announcements",
		FilterBar: &FilterBar{
			Searchable: true,
			Filters: []Filter{{
				Field:    "type",
				Label:    "Type",
				Options:  []Option{{Value: "event", Label: "Event"}},
				OnFilter: func(field string) Link { return Link{HXGet: "/t?op=filter&field=" + field} },
			}},
		},
	})

	require.NotNil(t, v.FilterBar)
	assert.Equal(t, "input changed delay:300ms, search", v.FilterBar.Trigger)
	assert.Equal(t, "#announcements-region", v.FilterBar.Target)
	assert.Equal(t, "/t?op=filter&field=type", v.FilterBar.Filters[0].Link.HXGet)
}

// Admin announcement list: page 2 of 3 with three rows
func TestRender_AnnouncementScenario(t *testing.T) {
	data := []announcement{
		{ID: "a1", Title: "Midterm schedule", Type: "instructional"},
		{ID: "a2", Title: "Lab safety", Type: "instructional"},
		{ID: "a3", Title: "Reading list", Type: "instructional"},
	}
	tbl := Table[announcement]{
		ID:      "announcements",
		Columns: announcementColumns(),
		Data:    data,
		Actions: deleteActions(),
		Pagination: &Pagination{
			CurrentPage: 2,
			TotalPages:  3,
			OnPageChange: func(page int) Link {
				return Link{Href: fmt.Sprintf("/admin/announcements?type=instructional&page=%d", page)}
			},
		},
	}

	v := Build(tbl)
	require.Len(t, v.Rows, 3)
	require.NotNil(t, v.Pager)
	assert.Equal(t, "1 [2] 3", describe(v.Pager.Items))
	assert.False(t, v.Pager.Prev.Disabled)
	assert.False(t, v.Pager.Next.Disabled)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl))
	html := buf.String()

	assert.Equal(t, 3, strings.Count(html, `<tr class="row">`))
	assert.Contains(t, html, `<span class="page current" aria-current="page">2</span>`)
	assert.Contains(t, html, `id="announcements-dialog"`)
	assert.Contains(t, html, "Midterm schedule")
	assert.NotContains(t, html, "No results")
}

func TestRender_LoadingRegionLazyLoads(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRegion(&buf, Table[announcement]{
		ID:      "announcements",
		Columns: announcementColumns(),
		Loading: true,
		Source:  Link{HXGet: "/admin/announcements/table?op=refresh"},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `hx-trigger="load, list-refresh from:body"`)
	assert.Equal(t, SkeletonRows, strings.Count(html, `class="skeleton"`))
	assert.NotContains(t, html, "No results")
}

func TestRender_EmptyAndFailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRegion(&buf, Table[announcement]{Columns: announcementColumns()}))
	assert.Contains(t, buf.String(), "No results")
	assert.Contains(t, buf.String(), `colspan="3"`)

	buf.Reset()
	require.NoError(t, RenderRegion(&buf, Table[announcement]{Columns: announcementColumns(), Failed: true, Retry: Link{HXGet: "/retry"}}))
	assert.Contains(t, buf.String(), "Failed to load.")
	assert.Contains(t, buf.String(), `hx-get="/retry"`)
}

func TestRender_ClearStaysInPlace(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Table[announcement]{
		ID:      "announcements",
		Columns: announcementColumns(),
		FilterBar: &FilterBar{
			Searchable: true,
			Search:     "algo",
			OnClear:    Link{Href: "/admin/announcements", HXGet: "/admin/announcements/table?op=clear"},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<a class="clear" href="/admin/announcements" hx-get="/admin/announcements/table?op=clear" hx-target="#announcements-region"`)
	assert.Contains(t, html, `value="algo"`)
}

func TestRenderConfirm(t *testing.T) {
	var buf bytes.Buffer
	err := RenderConfirm(&buf, Confirm{
		Title:   "Delete announcement",
		Message: "This cannot be undone.",
		Action:  "/admin/announcements/a1/delete",
		Token:   "tok",
		Inline:  true,
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `hx-post="/admin/announcements/a1/delete"`)
	assert.Contains(t, html, `name="token" value="tok"`)
	assert.Contains(t, html, `<form method="dialog">`)
}
