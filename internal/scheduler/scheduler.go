package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobdesk/internal/alerts"
	"github.com/amishk599/jobdesk/internal/model"
)

// seenRetention is how long a seen job ID is remembered.
const seenRetention = 30 * 24 * time.Hour

// Scheduler owns the main loop: ticks on an interval and runs each saved
// search sequentially.
type Scheduler struct {
	pollers  []*alerts.SearchPoller
	store    model.JobStore
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that polls all searches at the given interval.
func NewScheduler(pollers []*alerts.SearchPoller, store model.JobStore, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"searches", len(s.pollers),
	)

	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("poll cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			if err := s.store.Cleanup(seenRetention); err != nil {
				s.logger.Warn("cleanup of seen jobs failed", "error", err)
			}
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("poll cycle failed", "error", err)
			}
		}
	}
}

// RunOnce polls every search once. When the store is empty at the start of
// the cycle every search seeds it instead of notifying. It reports whether
// the cycle seeded and returns the joined errors of failed searches.
func (s *Scheduler) RunOnce(ctx context.Context) (seeded bool, err error) {
	seeded, err = s.store.IsEmpty()
	if err != nil {
		return false, fmt.Errorf("check seen store: %w", err)
	}
	if seeded {
		s.logger.Info("first run, seeding seen jobs without notifying")
	}

	var errs []error
	for _, p := range s.pollers {
		if ctx.Err() != nil {
			return seeded, ctx.Err()
		}

		run := p.Poll
		if seeded {
			run = p.Seed
		}
		if err := run(ctx); err != nil {
			s.logger.Error("poll failed",
				"search", p.Name,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return seeded, errors.Join(errs...)
}
