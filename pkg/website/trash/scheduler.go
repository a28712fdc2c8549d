package trash

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig contains configuration for scheduled trash pruning.
type RetentionConfig struct {
	// RetentionDays is the number of days a trash entry is kept before it
	// becomes eligible for permanent removal. 0 keeps entries forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler.
	PruneSchedule string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// Scheduler runs trash pruning on a cron schedule.
type Scheduler struct {
	store  *Store
	config *RetentionConfig
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new retention scheduler for the given store.
func NewScheduler(store *Store, config *RetentionConfig) *Scheduler {
	if config == nil {
		config = DefaultRetentionConfig()
	}
	return &Scheduler{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "website.trash.scheduler"),
	}
}

// Start begins scheduled pruning. If PruneSchedule is empty or
// RetentionDays is 0, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.PruneSchedule == "" || s.config.RetentionDays <= 0 {
		s.logger.Info("trash retention not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.PruneSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.PruneSchedule, s.runPruning); err != nil {
		return fmt.Errorf("failed to schedule trash pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("trash retention scheduler started",
		"schedule", s.config.PruneSchedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPruning executes one pruning cycle.
func (s *Scheduler) runPruning() {
	age := time.Duration(s.config.RetentionDays) * 24 * time.Hour
	removed, err := s.store.Purge(age)
	if err != nil {
		s.logger.Error("trash pruning failed",
			"removed", removed,
			"error", err,
		)
		return
	}
	s.logger.Info("trash pruning completed", "removed", removed)
}

// Stop stops the scheduler and waits for a running pruning cycle to
// finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("trash retention scheduler stopped")
}
