package handlers

import (
	"context"
	"fmt"
	"html/template"

	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/BradenHooton/classdesk/internal/table"
)

// auditSource serves the audit trail to the list handler. The audit trail is
// local, so the platform session cookie is not needed.
type auditSource struct {
	lister AuditLister
}

func (s auditSource) List(ctx context.Context, _ string, q listing.RequestQuery) (*listing.Page[models.AuditLog], error) {
	return s.lister.List(ctx, q)
}

func auditListConfig(lister AuditLister) ListConfig[models.AuditLog] {
	return ListConfig[models.AuditLog]{
		View:       AuditView,
		Title:      "Audit trail",
		Noun:       "entry",
		Roles:      []string{models.RoleAdmin},
		Searchable: true,
		Filters: []FilterConfig{
			{Field: AuditView.TypeParamName(), Label: "View", Options: options(AuditView.Types)},
			{Field: AuditView.RoleParamName(), Label: "Outcome", Options: options(AuditView.Roles)},
		},
		Columns: []table.Column[models.AuditLog]{
			{Header: "When", Accessor: table.Func(func(l models.AuditLog) any { return l.CreatedAt.Format("2006-01-02 15:04:05") })},
			{Header: "Event", Accessor: table.Path[models.AuditLog]("eventType")},
			{Header: "Actor", Accessor: table.Func(auditActor)},
			{Header: "View", Accessor: table.Path[models.AuditLog]("resourceType")},
			{Header: "Row", Accessor: table.Path[models.AuditLog]("resourceId")},
			{Header: "Title", Accessor: table.Path[models.AuditLog]("metadata.title")},
			{Header: "Outcome", Accessor: table.Path[models.AuditLog]("success"), Cell: auditOutcome},
		},
		Lister: auditSource{lister: lister},
	}
}

func auditActor(l models.AuditLog) any {
	if l.ActorRole == "" {
		return l.ActorID
	}
	return fmt.Sprintf("%s (%s)", l.ActorID, l.ActorRole)
}

func auditOutcome(l models.AuditLog) template.HTML {
	if l.Success {
		return badge("success")
	}
	reason := ""
	if l.FailureReason != nil {
		reason = *l.FailureReason
	}
	return template.HTML(`<span class="badge badge-failure" title="` + template.HTMLEscapeString(reason) + `">Failure</span>`)
}
