package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int32
	days  atomic.Int32
	err   error
}

func (c *countingCleaner) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	c.calls.Add(1)
	c.days.Store(int32(retentionDays))
	return 3, c.err
}

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep(now time.Time) int {
	s.calls.Add(1)
	return 1
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_RunsImmediatelyAndStops(t *testing.T) {
	cleaner := &countingCleaner{}
	sweeper := &countingSweeper{}
	cm := NewCleanupManager(cleaner, sweeper, 90, quietLogger(), time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), sweeper.calls.Load())
	assert.Equal(t, int32(90), cleaner.days.Load())

	cm.Stop()
	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_Ticks(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db down")}
	cm := NewCleanupManager(cleaner, &countingSweeper{}, 30, quietLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
