package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/classdesk/internal/listing"
	"github.com/BradenHooton/classdesk/internal/models"
)

// Request parameters of the audit trail view
const (
	AuditResourceParam = "resource"
	AuditOutcomeParam  = "outcome"

	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
)

// AuditStore persists audit logs
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, f models.AuditFilter) ([]*models.AuditLog, error)
	Count(ctx context.Context, f models.AuditFilter) (int64, error)
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

// DeleteRecord describes one confirmed delete sent to the platform API
type DeleteRecord struct {
	ActorID   string
	ActorRole string
	View      string
	RowID     string
	Title     string
	Status    int
	Err       error
	IPAddress string
	UserAgent string
}

// AuditService handles audit logging with dual-write pattern (slog + database)
type AuditService struct {
	repo   AuditStore
	logger *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditStore, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// RecordDelete logs a delete and persists it. Persistence failures are logged
// and never fail the delete itself.
func (s *AuditService) RecordDelete(ctx context.Context, rec DeleteRecord) {
	log := &models.AuditLog{
		EventType:    models.AuditEventTypeContentDelete,
		ActorID:      rec.ActorID,
		ActorRole:    rec.ActorRole,
		ResourceType: rec.View,
		ResourceID:   optional(rec.RowID),
		Action:       models.AuditActionDelete,
		Success:      rec.Err == nil,
		IPAddress:    optional(rec.IPAddress),
		UserAgent:    optional(rec.UserAgent),
		Metadata:     models.NewDeleteMetadata(rec.View, rec.Status, rec.Title),
	}

	attrs := []any{
		slog.String("actor_id", rec.ActorID),
		slog.String("view", rec.View),
		slog.String("row_id", rec.RowID),
		slog.Int("upstream_status", rec.Status),
	}
	if rec.Err != nil {
		reason := rec.Err.Error()
		log.FailureReason = &reason
		s.logger.WarnContext(ctx, "delete failed", append(attrs, slog.String("failure_reason", reason))...)
	} else {
		s.logger.InfoContext(ctx, "delete confirmed", attrs...)
	}

	if _, err := s.repo.Create(ctx, log); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("view", rec.View),
			slog.Any("error", err),
		)
	}
}

// List returns one page of the audit trail for the audit list view
func (s *AuditService) List(ctx context.Context, q listing.RequestQuery) (*listing.Page[models.AuditLog], error) {
	f := models.AuditFilter{
		Search:       q.Filter(listing.ParamSearch),
		ResourceType: q.Filter(AuditResourceParam),
		Limit:        q.Limit,
		Offset:       q.Offset(),
	}
	switch q.Filter(AuditOutcomeParam) {
	case AuditOutcomeSuccess:
		ok := true
		f.Success = &ok
	case AuditOutcomeFailure:
		ok := false
		f.Success = &ok
	}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count audit trail: %w", err)
	}

	// Past the last page: serve the last page instead of an empty one
	if p := listing.NewPagination(q.Page, q.Limit, int(total)); p.Page != q.Page {
		q.Page = p.Page
		f.Offset = q.Offset()
	}

	logs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit trail: %w", err)
	}

	items := make([]models.AuditLog, 0, len(logs))
	for _, l := range logs {
		items = append(items, *l)
	}
	return listing.Paginate(items, q, int(total)), nil
}

// Cleanup removes audit logs past the retention period
func (s *AuditService) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	deleted, err := s.repo.Cleanup(ctx, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up audit logs: %w", err)
	}
	return deleted, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
