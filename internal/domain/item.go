package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemFields is the canonical shape of a storefront product as produced by the normalizer
type ItemFields struct {
	SourceID    string
	Title       string
	Handle      *string
	Price       *decimal.Decimal
	Currency    *string
	Images      []string
	Tags        []string
	ProductType *string
}

// Item is a persisted storefront product. (BrandID, SourceID) is unique;
// CollectionID points at the collection whose pass last touched it.
type Item struct {
	ID           string           `json:"id"`
	BrandID      string           `json:"brand_id"`
	CollectionID string           `json:"collection_id,omitempty"`
	SourceID     string           `json:"source_id"`
	Title        string           `json:"title"`
	Handle       *string          `json:"handle,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	Images       []string         `json:"images"`
	Tags         []string         `json:"tags"`
	ProductType  *string          `json:"product_type,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
