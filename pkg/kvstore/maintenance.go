package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Compactor is implemented by stores that can reclaim storage slack.
// Compacting reorganizes the backing storage (WAL truncation, vacuum, file
// rewrite) and must never remove live entries: skipped engagements stay
// skipped forever unless explicitly cleared.
type Compactor interface {
	Compact(ctx context.Context) error
}

// Maintainer runs store compaction on a schedule using cron syntax.
type Maintainer struct {
	store    Store
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewMaintainer creates a maintainer for the given store.
// If logger is nil, slog.Default() is used.
func NewMaintainer(store Store, schedule string, logger *slog.Logger) *Maintainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintainer{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "kvstore.maintainer"),
	}
}

// Start begins scheduled compaction based on the cron expression.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If the schedule is empty or the store does not support compaction,
// Start logs and does nothing.
func (m *Maintainer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schedule == "" {
		m.logger.Info("maintenance schedule not configured, skipping maintainer")
		return nil
	}

	if _, ok := m.store.(Compactor); !ok {
		m.logger.Info("store does not support compaction, skipping maintainer")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", m.schedule, err)
	}

	// Add cron job
	_, err := m.cron.AddFunc(m.schedule, func() {
		m.runCompaction(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule compaction: %w", err)
	}

	// Start cron scheduler
	m.cron.Start()
	m.running = true

	m.logger.Info("storage maintainer started", "schedule", m.schedule)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// runCompaction executes one compaction cycle.
func (m *Maintainer) runCompaction(ctx context.Context) {
	if err := m.RunOnce(ctx); err != nil {
		m.logger.Error("scheduled compaction failed", "error", err)
		return
	}
	m.logger.Debug("scheduled compaction completed")
}

// RunOnce compacts the store immediately, outside the schedule.
// Stores without compaction support are a no-op.
func (m *Maintainer) RunOnce(ctx context.Context) error {
	compactor, ok := m.store.(Compactor)
	if !ok {
		return nil
	}
	return compactor.Compact(ctx)
}

// Stop stops the scheduler and waits for any running job to complete.
func (m *Maintainer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil && m.running {
		ctx := m.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		m.running = false
		m.logger.Info("storage maintainer stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (m *Maintainer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// NextRun returns the next scheduled compaction time.
func (m *Maintainer) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron == nil {
		return nil
	}

	entries := m.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
