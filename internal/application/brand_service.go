package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// BrandService handles brand registration and lookups
type BrandService struct {
	brands      ports.BrandRepository
	collections ports.CollectionRepository
	items       ports.ItemRepository
	posts       ports.SocialPostRepository
	source      ports.CatalogSource
	logger      zerolog.Logger
}

// NewBrandService creates a new brand service
func NewBrandService(
	brands ports.BrandRepository,
	collections ports.CollectionRepository,
	items ports.ItemRepository,
	posts ports.SocialPostRepository,
	source ports.CatalogSource,
	logger zerolog.Logger,
) *BrandService {
	return &BrandService{
		brands:      brands,
		collections: collections,
		items:       items,
		posts:       posts,
		source:      source,
		logger:      logger,
	}
}

// RegisterBrandInput represents input for registering a brand
type RegisterBrandInput struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	SocialProfile string `json:"social_profile"`
}

// RegisterBrand tracks a new storefront. When the domain is already tracked the
// existing brand is returned with existed=true. A domain that does not serve
// the catalog is rejected and nothing is persisted.
func (s *BrandService) RegisterBrand(ctx context.Context, input RegisterBrandInput) (brand *domain.Brand, existed bool, err error) {
	name := strings.TrimSpace(input.Name)
	storeDomain := domain.NormalizeStoreDomain(input.Domain)
	if name == "" || storeDomain == "" {
		return nil, false, fmt.Errorf("name and domain are required: %w", domain.ErrInvalidInput)
	}

	existing, err := s.brands.GetByDomain(ctx, storeDomain)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing brand: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("brandId", existing.ID).
			Str("domain", storeDomain).
			Msg("Brand already registered, returning existing brand")
		return existing, true, nil
	}

	if err := s.source.CheckDomain(ctx, storeDomain); err != nil {
		s.logger.Warn().Err(err).Str("domain", storeDomain).Msg("Domain validation failed")
		return nil, false, err
	}

	now := time.Now()
	brand = &domain.Brand{
		Name:          name,
		Domain:        storeDomain,
		SocialProfile: strings.TrimSpace(input.SocialProfile),
		Status:        domain.BrandStatusPending,
		Collections:   []domain.CollectionSummary{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.brands.Create(ctx, brand); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// registered concurrently
			existing, getErr := s.brands.GetByDomain(ctx, storeDomain)
			if getErr == nil && existing != nil {
				return existing, true, nil
			}
		}
		s.logger.Error().Err(err).Str("domain", storeDomain).Msg("Failed to create brand")
		return nil, false, fmt.Errorf("failed to create brand: %w", err)
	}

	s.logger.Info().
		Str("brandId", brand.ID).
		Str("brandName", brand.Name).
		Str("domain", storeDomain).
		Msg("Brand registered")

	return brand, false, nil
}

// GetBrand retrieves a brand by id
func (s *BrandService) GetBrand(ctx context.Context, brandID string) (*domain.Brand, error) {
	return loadBrand(ctx, s.brands, brandID)
}

// ListBrands returns all tracked brands
func (s *BrandService) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

// ListPosts returns the most recently discovered social posts of a brand
func (s *BrandService) ListPosts(ctx context.Context, brandID string, limit int) ([]*domain.SocialPost, error) {
	brand, err := loadBrand(ctx, s.brands, brandID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByBrand(ctx, brand.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetCollection retrieves a collection with its item list
func (s *BrandService) GetCollection(ctx context.Context, collectionID string) (*domain.Collection, error) {
	collection, err := s.collections.GetByID(ctx, strings.TrimSpace(collectionID))
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %q: %w", collectionID, err)
	}
	if collection == nil {
		return nil, domain.NotFoundError{Resource: "collection " + collectionID}
	}
	return collection, nil
}

// FindBrandByName retrieves a brand by case-insensitive name
func (s *BrandService) FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	brand, err := s.brands.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to find brand %q: %w", name, err)
	}
	if brand == nil {
		return nil, domain.NotFoundError{Resource: "brand " + name}
	}
	return brand, nil
}

// PruneOrphans deletes collections and items whose brand no longer exists
func (s *BrandService) PruneOrphans(ctx context.Context) (collections int64, items int64, err error) {
	brands, err := s.brands.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list brands: %w", err)
	}
	brandIDs := make([]string, 0, len(brands))
	for _, b := range brands {
		brandIDs = append(brandIDs, b.ID)
	}

	collections, err = s.collections.DeleteOrphaned(ctx, brandIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prune collections: %w", err)
	}
	items, err = s.items.DeleteOrphaned(ctx, brandIDs)
	if err != nil {
		return collections, 0, fmt.Errorf("failed to prune items: %w", err)
	}

	s.logger.Info().
		Int64("collections", collections).
		Int64("items", items).
		Msg("Pruned orphaned catalog records")

	return collections, items, nil
}
