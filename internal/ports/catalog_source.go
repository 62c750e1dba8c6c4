package ports

import (
	"context"

	"storefront-ingest/internal/domain"
)

// CatalogSource reads a storefront's public JSON catalog.
// Walk methods hand each normalized page to visit in order and stop at the
// first error, either from the source or returned by visit.
type CatalogSource interface {
	// CheckDomain confirms the domain serves the catalog endpoint.
	// Returns *domain.SourceUnreachableError otherwise.
	CheckDomain(ctx context.Context, storeDomain string) error

	WalkCollections(ctx context.Context, storeDomain string, visit func([]domain.CollectionFields) error) error
	WalkItems(ctx context.Context, storeDomain string, collectionSourceID string, visit func([]domain.ItemFields) error) error
}

// PostExtractor fetches recent public posts for a profile
type PostExtractor interface {
	ExtractPosts(ctx context.Context, profileURL string, limit int) ([]domain.ExtractedPost, error)
}
