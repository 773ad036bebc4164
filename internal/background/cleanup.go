package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AuditCleaner removes audit logs past their retention period
type AuditCleaner interface {
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

// ConfirmationSweeper forgets expired single-use confirmations
type ConfirmationSweeper interface {
	Sweep(now time.Time) int
}

// CleanupManager periodically enforces audit retention and sweeps used
// delete confirmations
type CleanupManager struct {
	audit         AuditCleaner
	confirmations ConfirmationSweeper
	retentionDays int
	logger        *slog.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	audit AuditCleaner,
	confirmations ConfirmationSweeper,
	retentionDays int,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		audit:         audit,
		confirmations: confirmations,
		retentionDays: retentionDays,
		logger:        logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start runs cleanup immediately and then every interval until Stop is
// called or ctx is done
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	if swept := cm.confirmations.Sweep(time.Now()); swept > 0 {
		cm.logger.Debug("swept used confirmations", slog.Int("count", swept))
	}

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.audit.Cleanup(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("failed to cleanup audit logs", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("audit retention cleanup completed",
			slog.Int64("rows_deleted", rowsDeleted),
			slog.Int("retention_days", cm.retentionDays),
		)
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
