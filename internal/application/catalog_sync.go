package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// CatalogSyncService converges a brand's collections and items with its storefront
type CatalogSyncService struct {
	brands      ports.BrandRepository
	collections ports.CollectionRepository
	items       ports.ItemRepository
	source      ports.CatalogSource
	metrics     ports.SyncMetrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCatalogSyncService creates a new catalog sync service
func NewCatalogSyncService(
	brands ports.BrandRepository,
	collections ports.CollectionRepository,
	items ports.ItemRepository,
	source ports.CatalogSource,
	metrics ports.SyncMetrics,
	logger zerolog.Logger,
) *CatalogSyncService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CatalogSyncService{
		brands:      brands,
		collections: collections,
		items:       items,
		source:      source,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

type syncedCollection struct {
	id       string
	sourceID string
}

// SyncCatalog syncs the catalog of the brand with the given id
func (s *CatalogSyncService) SyncCatalog(ctx context.Context, brandID string) (*domain.SyncResult, error) {
	brand, err := loadBrand(ctx, s.brands, brandID)
	if err != nil {
		return nil, err
	}
	return s.SyncBrandCatalog(ctx, brand)
}

// SyncBrandCatalog walks the brand's collections, then every collection's items.
// A fetch or store error aborts the whole brand; records written before the
// failure stay persisted and converge on the next run.
func (s *CatalogSyncService) SyncBrandCatalog(ctx context.Context, brand *domain.Brand) (*domain.SyncResult, error) {
	result, err := s.syncBrandCatalog(ctx, brand)
	if err != nil {
		if statusErr := s.brands.UpdateStatus(context.WithoutCancel(ctx), brand.ID, domain.BrandStatusFailing); statusErr != nil {
			s.logger.Warn().Err(statusErr).Str("brandId", brand.ID).Msg("Failed to mark brand as failing")
		}
		return nil, err
	}

	if err := s.brands.UpdateStatus(ctx, brand.ID, domain.BrandStatusActive); err != nil {
		s.logger.Warn().Err(err).Str("brandId", brand.ID).Msg("Failed to mark brand as active")
	}
	return result, nil
}

func (s *CatalogSyncService) syncBrandCatalog(ctx context.Context, brand *domain.Brand) (*domain.SyncResult, error) {
	storeDomain := domain.NormalizeStoreDomain(brand.Domain)
	result := &domain.SyncResult{BrandID: brand.ID, BrandName: brand.Name}

	logger := s.logger.With().Str("brandId", brand.ID).Str("domain", storeDomain).Logger()
	logger.Info().Str("brandName", brand.Name).Msg("Starting catalog sync")

	// source id -> persisted collection, in first-seen order
	synced := make(map[string]syncedCollection)
	var order []string
	summaries := make(map[string]domain.CollectionSummary)

	err := s.source.WalkCollections(ctx, storeDomain, func(batch []domain.CollectionFields) error {
		for _, fields := range batch {
			upserted, err := s.collections.Upsert(ctx, brand.ID, fields)
			if err != nil {
				return fmt.Errorf("failed to upsert collection %s: %w", fields.SourceID, err)
			}
			s.metrics.RecordUpsert("collection", upserted.Created)
			if upserted.Created {
				result.CollectionsAdded++
			} else {
				result.CollectionsUpdated++
			}
			result.TotalCollections++

			if _, seen := synced[fields.SourceID]; !seen {
				order = append(order, fields.SourceID)
			}
			synced[fields.SourceID] = syncedCollection{id: upserted.ID, sourceID: fields.SourceID}
			summaries[fields.SourceID] = domain.CollectionSummary{
				ID:       upserted.ID,
				SourceID: fields.SourceID,
				Title:    fields.Title,
				Handle:   fields.Handle,
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync collections of %s: %w", storeDomain, err)
	}

	summary := make([]domain.CollectionSummary, 0, len(order))
	for _, sourceID := range order {
		summary = append(summary, summaries[sourceID])
	}
	if err := s.brands.ReplaceCatalogSummary(ctx, brand.ID, summary, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update collection summary: %w", err)
	}

	for _, sourceID := range order {
		collection := synced[sourceID]
		if err := s.syncCollectionItems(ctx, brand, storeDomain, collection, result); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("brandName", brand.Name).
		Int("collectionsAdded", result.CollectionsAdded).
		Int("collectionsUpdated", result.CollectionsUpdated).
		Int("productsAdded", result.ProductsAdded).
		Int("productsUpdated", result.ProductsUpdated).
		Int("totalCollections", result.TotalCollections).
		Int("totalProducts", result.TotalProducts).
		Msg("Catalog sync finished")

	return result, nil
}

// syncCollectionItems walks one collection's items and replaces its item list
func (s *CatalogSyncService) syncCollectionItems(
	ctx context.Context,
	brand *domain.Brand,
	storeDomain string,
	collection syncedCollection,
	result *domain.SyncResult,
) error {
	itemIDs := []string{}
	seen := make(map[string]struct{})

	err := s.source.WalkItems(ctx, storeDomain, collection.sourceID, func(batch []domain.ItemFields) error {
		result.TotalProducts += len(batch)
		for _, fields := range batch {
			upserted, err := s.items.Upsert(ctx, brand.ID, collection.id, fields)
			if err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", fields.SourceID, err)
			}
			s.metrics.RecordUpsert("item", upserted.Created)
			if upserted.Created {
				result.ProductsAdded++
			} else {
				result.ProductsUpdated++
			}

			if _, dup := seen[upserted.ID]; !dup {
				seen[upserted.ID] = struct{}{}
				itemIDs = append(itemIDs, upserted.ID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync items of collection %s: %w", collection.sourceID, err)
	}

	if err := s.collections.SetItemIDs(ctx, collection.id, itemIDs); err != nil {
		return fmt.Errorf("failed to update items of collection %s: %w", collection.sourceID, err)
	}
	return nil
}

// loadBrand resolves a brand reference, mapping a missing document to NotFoundError
func loadBrand(ctx context.Context, brands ports.BrandRepository, rawID string) (*domain.Brand, error) {
	brandID := strings.TrimSpace(rawID)
	brand, err := brands.GetByID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand %q: %w", rawID, err)
	}
	if brand == nil {
		return nil, domain.NotFoundError{Resource: "brand " + brandID}
	}
	return brand, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordUpsert(string, bool)             {}
func (noopMetrics) RecordBrandSync(string, time.Duration) {}
func (noopMetrics) RecordSocialPosts(int)                 {}
