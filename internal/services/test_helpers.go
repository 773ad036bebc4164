package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/BradenHooton/classdesk/internal/models"
)

// MockAuditStore implements AuditStore for testing
type MockAuditStore struct {
	CreateFunc  func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListFunc    func(ctx context.Context, f models.AuditFilter) ([]*models.AuditLog, error)
	CountFunc   func(ctx context.Context, f models.AuditFilter) (int64, error)
	CleanupFunc func(ctx context.Context, olderThanDays int) (int64, error)
}

func (m *MockAuditStore) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return log, nil
}

func (m *MockAuditStore) List(ctx context.Context, f models.AuditFilter) ([]*models.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditStore) Count(ctx context.Context, f models.AuditFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, f)
	}
	return 0, nil
}

func (m *MockAuditStore) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx, olderThanDays)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
