package domain

import "time"

// CollectionFields is the canonical shape of a storefront collection as produced by the normalizer
type CollectionFields struct {
	SourceID    string
	Title       string
	Handle      string
	URL         *string
	LaunchedAt  *time.Time
	Description *string
	Images      []string
}

// Collection is a persisted storefront collection owned by a brand.
// (BrandID, SourceID) is unique.
type Collection struct {
	ID          string     `json:"id"`
	BrandID     string     `json:"brand_id"`
	SourceID    string     `json:"source_id"`
	Title       string     `json:"title"`
	Handle      string     `json:"handle"`
	URL         *string    `json:"url,omitempty"`
	LaunchedAt  *time.Time `json:"launched_at,omitempty"`
	Description *string    `json:"description,omitempty"`
	Images      []string   `json:"images"`
	ItemIDs     []string   `json:"item_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
