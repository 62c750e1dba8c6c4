package application

import (
	"context"
	"errors"
	"time"

	"storefront-ingest/internal/domain"

	"github.com/rs/zerolog"
)

// Sweeper runs a full sweep
type Sweeper interface {
	SyncAllBrands(ctx context.Context, opts domain.SyncOptions) ([]domain.BrandOutcome, error)
}

// Scheduler invokes a full products and socials sweep on a fixed cadence
type Scheduler struct {
	sweep      Sweeper
	interval   time.Duration
	runOnStart bool
	logger     zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(sweep Sweeper, interval time.Duration, runOnStart bool, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		sweep:      sweep,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. A non-positive interval disables the schedule.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("Scheduled sync disabled")
		return
	}

	s.logger.Info().Dur("interval", s.interval).Msg("Scheduled sync started")
	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduled sync stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	outcomes, err := s.sweep.SyncAllBrands(ctx, domain.SyncOptions{Products: true, Socials: true})
	switch {
	case errors.Is(err, domain.ErrSweepInProgress):
		s.logger.Warn().Msg("Previous sweep still running, skipping tick")
	case err != nil:
		s.logger.Error().Err(err).Msg("Scheduled sweep failed")
	default:
		s.logger.Info().Int("brands", len(outcomes)).Msg("Scheduled sweep finished")
	}
}
