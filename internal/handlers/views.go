package handlers

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/BradenHooton/classdesk/internal/apiclient"
	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/services"
	"github.com/BradenHooton/classdesk/internal/table"
)

// List view definitions
var (
	AnnouncementsView = listing.View{
		Name:         "announcements",
		Types:        []string{"general", "instructional", "event", "urgent"},
		DefaultLimit: 5,
		MaxLimit:     50,
	}
	ResourcesView = listing.View{
		Name:         "resources",
		Types:        []string{"document", "video", "link", "image"},
		DefaultLimit: 10,
		MaxLimit:     50,
	}
	PostsView = listing.View{
		Name:         "posts",
		Types:        []string{"discussion", "question", "assignment"},
		DefaultLimit: 5,
		MaxLimit:     50,
	}
	UsersView = listing.View{
		Name:         "users",
		Roles:        []string{models.RoleAdmin, models.RoleTeacher, models.RoleStudent},
		DefaultLimit: 10,
		MaxLimit:     100,
	}
	AuditView = listing.View{
		Name:         "audit",
		TypeParam:    services.AuditResourceParam,
		Types:        []string{"announcements", "resources", "posts", "users"},
		RoleParam:    services.AuditOutcomeParam,
		Roles:        []string{services.AuditOutcomeSuccess, services.AuditOutcomeFailure},
		DefaultLimit: 20,
		MaxLimit:     100,
	}
)

// Source lists, loads and deletes the rows of one platform collection
type Source[T any] interface {
	Lister[T]
	Getter[T]
	Deleter
}

// Sources are the data collaborators of the console views
type Sources struct {
	Announcements Source[models.Announcement]
	Resources     Source[models.Resource]
	Posts         Source[models.Post]
	Users         Source[models.User]
	Audit         AuditLister
}

// NewSources binds the platform API collections
func NewSources(client *apiclient.Client, audit AuditLister) Sources {
	return Sources{
		Announcements: apiclient.NewCollection[models.Announcement](client, "/announcements"),
		Resources:     apiclient.NewCollection[models.Resource](client, "/resources"),
		Posts:         apiclient.NewCollection[models.Post](client, "/posts"),
		Users:         apiclient.NewCollection[models.User](client, "/users"),
		Audit:         audit,
	}
}

// RegisterViews creates every console view and registers it in navigation order
func RegisterViews(console *Console, src Sources) {
	console.Register(
		NewListHandler(console, ListConfig[models.Announcement]{
			View:       AnnouncementsView,
			Title:      "Announcements",
			Noun:       "announcement",
			Roles:      []string{models.RoleAdmin},
			Searchable: true,
			Filters:    []FilterConfig{typeFilter(AnnouncementsView)},
			Columns: []table.Column[models.Announcement]{
				{Header: "Title", Accessor: table.Path[models.Announcement]("title")},
				{Header: "Type", Accessor: table.Path[models.Announcement]("type"), Cell: func(a models.Announcement) template.HTML { return badge(a.Type) }},
				{Header: "Audience", Accessor: table.Path[models.Announcement]("audience")},
				{Header: "Author", Accessor: table.Path[models.Announcement]("author.name")},
				{Header: "Posted", Accessor: table.Func(func(a models.Announcement) any { return formatDate(a.CreatedAt) })},
			},
			Lister:   src.Announcements,
			Deleter:  src.Announcements,
			Getter:   src.Announcements,
			RowID:    func(a models.Announcement) string { return a.ID },
			RowTitle: func(a models.Announcement) string { return a.Title },
		}),
		NewListHandler(console, ListConfig[models.Resource]{
			View:       ResourcesView,
			Title:      "Resources",
			Noun:       "resource",
			Roles:      []string{models.RoleAdmin, models.RoleTeacher},
			Searchable: true,
			Filters:    []FilterConfig{typeFilter(ResourcesView)},
			Columns: []table.Column[models.Resource]{
				{Header: "Title", Accessor: table.Path[models.Resource]("title")},
				{Header: "Type", Accessor: table.Path[models.Resource]("type"), Cell: func(r models.Resource) template.HTML { return badge(r.Type) }},
				{Header: "Subject", Accessor: table.Path[models.Resource]("subject")},
				{Header: "Uploaded by", Accessor: table.Path[models.Resource]("uploadedBy.name")},
				{Header: "Added", Accessor: table.Func(func(r models.Resource) any { return formatDate(r.CreatedAt) })},
			},
			Lister:   src.Resources,
			Deleter:  src.Resources,
			Getter:   src.Resources,
			RowID:    func(r models.Resource) string { return r.ID },
			RowTitle: func(r models.Resource) string { return r.Title },
			HideDelete: func(r models.Resource, viewer *models.Profile) bool {
				return !viewer.HasRole(models.RoleAdmin) && (r.Author == nil || r.Author.ID != viewer.ID)
			},
		}),
		NewListHandler(console, ListConfig[models.Post]{
			View:       PostsView,
			Title:      "Posts",
			Noun:       "post",
			Roles:      []string{models.RoleAdmin, models.RoleTeacher, models.RoleStudent},
			Searchable: true,
			Filters:    []FilterConfig{typeFilter(PostsView)},
			Columns: []table.Column[models.Post]{
				{Header: "Title", Accessor: table.Path[models.Post]("title")},
				{Header: "Type", Accessor: table.Path[models.Post]("type"), Cell: func(p models.Post) template.HTML { return badge(p.Type) }},
				{Header: "Author", Accessor: table.Path[models.Post]("author.name")},
				{Header: "Comments", Accessor: table.Path[models.Post]("commentCount")},
				{Header: "Posted", Accessor: table.Func(func(p models.Post) any { return formatDate(p.CreatedAt) })},
			},
			Lister:   src.Posts,
			Deleter:  src.Posts,
			Getter:   src.Posts,
			RowID:    func(p models.Post) string { return p.ID },
			RowTitle: func(p models.Post) string { return p.Title },
			HideDelete: func(p models.Post, viewer *models.Profile) bool {
				return !viewer.HasRole(models.RoleAdmin) && !p.OwnedBy(viewer.ID)
			},
		}),
		NewListHandler(console, ListConfig[models.User]{
			View:       UsersView,
			Title:      "Users",
			Noun:       "user",
			Roles:      []string{models.RoleAdmin},
			Searchable: true,
			Filters: []FilterConfig{{
				Field:   UsersView.RoleParamName(),
				Label:   "Role",
				Options: options(UsersView.Roles),
			}},
			Columns: []table.Column[models.User]{
				{Header: "Name", Accessor: table.Path[models.User]("name")},
				{Header: "Email", Accessor: table.Path[models.User]("email")},
				{Header: "Role", Accessor: table.Path[models.User]("role"), Cell: func(u models.User) template.HTML { return badge(u.Role) }},
				{Header: "Status", Accessor: table.Path[models.User]("status")},
				{Header: "Joined", Accessor: table.Func(func(u models.User) any { return formatDate(u.CreatedAt) })},
			},
			Lister:   src.Users,
			Deleter:  src.Users,
			Getter:   src.Users,
			RowID:    func(u models.User) string { return u.ID },
			RowTitle: func(u models.User) string { return u.Name },
			// admins cannot delete their own account from the console
			HideDelete: func(u models.User, viewer *models.Profile) bool { return viewer != nil && u.ID == viewer.ID },
		}),
		NewListHandler(console, auditListConfig(src.Audit)),
	)
}

func typeFilter(v listing.View) FilterConfig {
	return FilterConfig{Field: v.TypeParamName(), Label: "Type", Options: options(v.Types)}
}

func options(values []string) []table.Option {
	opts := make([]table.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, table.Option{Value: v, Label: label(v)})
	}
	return opts
}

func label(value string) string {
	if value == "" {
		return ""
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func badge(value string) template.HTML {
	if value == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		template.HTMLEscapeString(value), template.HTMLEscapeString(label(value))))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// AuditLister lists the audit trail kept in Postgres
type AuditLister interface {
	List(ctx context.Context, q listing.RequestQuery) (*listing.Page[models.AuditLog], error)
}
