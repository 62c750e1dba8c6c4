package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SweepOptions tunes how a sweep fans out across brands
type SweepOptions struct {
	Concurrency  int           // parallel brand workers, each internally sequential
	BrandTimeout time.Duration // soft deadline per brand, zero disables
}

// SweepService runs catalog and social sync across all tracked brands
type SweepService struct {
	brands  ports.BrandRepository
	catalog *CatalogSyncService
	social  *SocialSyncService
	lock    ports.RunLock
	events  ports.EventPublisher
	metrics ports.SyncMetrics
	opts    SweepOptions
	logger  zerolog.Logger
}

// NewSweepService creates a new sweep service. lock, events and metrics may be nil.
func NewSweepService(
	brands ports.BrandRepository,
	catalog *CatalogSyncService,
	social *SocialSyncService,
	lock ports.RunLock,
	events ports.EventPublisher,
	metrics ports.SyncMetrics,
	opts SweepOptions,
	logger zerolog.Logger,
) *SweepService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SweepService{
		brands:  brands,
		catalog: catalog,
		social:  social,
		lock:    lock,
		events:  events,
		metrics: metrics,
		opts:    opts,
		logger:  logger,
	}
}

// SyncOneBrand syncs a single brand. A catalog failure is returned as the error
// and also recorded on the outcome.
func (s *SweepService) SyncOneBrand(ctx context.Context, brandID string, opts domain.SyncOptions) (domain.BrandOutcome, error) {
	brand, err := loadBrand(ctx, s.brands, brandID)
	if err != nil {
		return domain.BrandOutcome{BrandID: brandID, Err: err, Error: err.Error()}, err
	}
	outcome := s.runBrand(ctx, brand, opts)
	return outcome, outcome.Err
}

// SyncAllBrands syncs every tracked brand. Per-brand failures are recorded in the
// returned outcomes, which keep the order of the brand listing.
func (s *SweepService) SyncAllBrands(ctx context.Context, opts domain.SyncOptions) ([]domain.BrandOutcome, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.syncAll(ctx, opts)
}

// StartAllBrands takes the run lock and runs the sweep in the background.
// It returns ErrSweepInProgress right away when another sweep holds the lock.
func (s *SweepService) StartAllBrands(ctx context.Context, opts domain.SyncOptions) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer release()
		if _, err := s.syncAll(ctx, opts); err != nil {
			s.logger.Error().Err(err).Msg("Background sweep failed")
		}
	}()
	return nil
}

func (s *SweepService) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	release, ok, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !ok {
		s.logger.Warn().Msg("Sweep already in progress, skipping")
		return nil, domain.ErrSweepInProgress
	}
	return release, nil
}

func (s *SweepService) syncAll(ctx context.Context, opts domain.SyncOptions) ([]domain.BrandOutcome, error) {
	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	s.logger.Info().
		Int("brands", len(brands)).
		Int("concurrency", s.opts.Concurrency).
		Bool("products", opts.Products).
		Bool("socials", opts.Socials).
		Msg("Starting sweep")

	outcomes := make([]domain.BrandOutcome, len(brands))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, brand := range brands {
		g.Go(func() error {
			outcomes[i] = s.runBrand(ctx, brand, opts)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed++
		}
	}

	s.publish(&domain.SyncEvent{
		Type:   domain.SyncEventSweepCompleted,
		Brands: len(outcomes),
		Failed: failed,
		At:     time.Now(),
	})
	s.logger.Info().
		Int("brands", len(outcomes)).
		Int("failed", failed).
		Msg("Sweep completed")

	return outcomes, nil
}

// runBrand never fails the caller: errors and panics become the outcome's error
func (s *SweepService) runBrand(ctx context.Context, brand *domain.Brand, opts domain.SyncOptions) (outcome domain.BrandOutcome) {
	outcome = domain.BrandOutcome{BrandID: brand.ID, BrandName: brand.Name}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.fail(&outcome, fmt.Errorf("brand sync panicked: %v", r), started)
		}
	}()

	s.publish(&domain.SyncEvent{
		Type:      domain.SyncEventBrandStarted,
		BrandID:   brand.ID,
		BrandName: brand.Name,
		At:        started,
	})

	brandCtx := ctx
	if s.opts.BrandTimeout > 0 {
		var cancel context.CancelFunc
		brandCtx, cancel = context.WithTimeout(ctx, s.opts.BrandTimeout)
		defer cancel()
	}

	if opts.Products {
		result, err := s.catalog.SyncBrandCatalog(brandCtx, brand)
		if err != nil {
			if ctx.Err() == nil && errors.Is(brandCtx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w after %s: %w", domain.ErrBrandDeadlineExceeded, s.opts.BrandTimeout, err)
			}
			s.fail(&outcome, err, started)
			return outcome
		}
		outcome.Result = result
	}

	if opts.Socials && s.social != nil {
		social := s.social.SyncSocial(brandCtx, brand)
		outcome.Social = &social
	}

	s.metrics.RecordBrandSync("succeeded", time.Since(started))
	s.publish(&domain.SyncEvent{
		Type:      domain.SyncEventBrandSucceeded,
		BrandID:   brand.ID,
		BrandName: brand.Name,
		Result:    outcome.Result,
		At:        time.Now(),
	})
	return outcome
}

func (s *SweepService) fail(outcome *domain.BrandOutcome, err error, started time.Time) {
	outcome.Result = nil
	outcome.Err = err
	outcome.Error = err.Error()

	s.logger.Error().
		Err(err).
		Str("brandId", outcome.BrandID).
		Str("brandName", outcome.BrandName).
		Msg("Brand sync failed")

	s.metrics.RecordBrandSync("failed", time.Since(started))
	s.publish(&domain.SyncEvent{
		Type:      domain.SyncEventBrandFailed,
		BrandID:   outcome.BrandID,
		BrandName: outcome.BrandName,
		Error:     outcome.Error,
		At:        time.Now(),
	})
}

func (s *SweepService) publish(event *domain.SyncEvent) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
