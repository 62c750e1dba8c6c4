package ports

import (
	"context"
	"time"

	"storefront-ingest/internal/domain"
)

// BrandRepository defines the interface for brand persistence.
// Lookups return (nil, nil) when no document matches and
// domain.ErrInvalidIdentifier when the id is not a well-formed key.
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
	GetByDomain(ctx context.Context, domain string) (*domain.Brand, error)
	// FindByName matches the name case-insensitively
	FindByName(ctx context.Context, name string) (*domain.Brand, error)
	List(ctx context.Context) ([]*domain.Brand, error)

	// ReplaceCatalogSummary replaces the collection summary and count wholesale
	ReplaceCatalogSummary(ctx context.Context, id string, summary []domain.CollectionSummary, syncedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.BrandStatus) error
}

// CollectionRepository defines the interface for collection persistence keyed on (brand, source id)
type CollectionRepository interface {
	Upsert(ctx context.Context, brandID string, fields domain.CollectionFields) (domain.UpsertResult, error)
	GetByID(ctx context.Context, id string) (*domain.Collection, error)
	// SetItemIDs replaces the owned item list of a collection
	SetItemIDs(ctx context.Context, collectionID string, itemIDs []string) error
	// DeleteOrphaned removes collections whose brand is not in brandIDs
	DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error)
}

// ItemRepository defines the interface for item persistence keyed on (brand, source id)
type ItemRepository interface {
	Upsert(ctx context.Context, brandID string, collectionID string, fields domain.ItemFields) (domain.UpsertResult, error)
	DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error)
}

// SocialPostRepository defines the interface for social post persistence keyed on URL
type SocialPostRepository interface {
	UpsertByURL(ctx context.Context, post *domain.SocialPost) (domain.UpsertResult, error)
	ListByBrand(ctx context.Context, brandID string, limit int) ([]*domain.SocialPost, error)
}
