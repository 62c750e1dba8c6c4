package domain

import (
	"strings"
	"time"
)

// BrandStatus is the lifecycle tag of a tracked brand
type BrandStatus string

const (
	BrandStatusPending BrandStatus = "pending" // registered, never synced
	BrandStatusActive  BrandStatus = "active"  // last catalog sync succeeded
	BrandStatusFailing BrandStatus = "failing" // last catalog sync failed
)

// Brand represents a tracked storefront
type Brand struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Domain          string              `json:"domain"`                   // canonical, no scheme or trailing slash
	SocialProfile   string              `json:"social_profile,omitempty"` // bare handle or full profile URL
	Status          BrandStatus         `json:"status"`
	Collections     []CollectionSummary `json:"collections"`
	CollectionCount int                 `json:"collection_count"`
	LastSyncedAt    *time.Time          `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// HasSocialProfile reports whether a social profile reference is configured
func (b *Brand) HasSocialProfile() bool {
	return b.SocialProfile != ""
}

// CollectionSummary is the denormalized view of a collection kept on its brand
type CollectionSummary struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
}

// NormalizeStoreDomain strips the scheme and trailing slashes from a storefront URL.
// Applying it to its own output is a no-op.
func NormalizeStoreDomain(url string) string {
	d := strings.TrimSpace(url)
	for {
		lower := strings.ToLower(d)
		switch {
		case strings.HasPrefix(lower, "https://"):
			d = d[len("https://"):]
		case strings.HasPrefix(lower, "http://"):
			d = d[len("http://"):]
		default:
			return strings.TrimRight(d, "/")
		}
	}
}
