package domain

import "time"

// PlatformInstagram is the only platform the post extractor serves today
const PlatformInstagram = "instagram"

// SocialPost is a public post discovered for a brand. URL is globally unique.
type SocialPost struct {
	ID           string     `json:"id"`
	BrandID      string     `json:"brand_id"`
	Platform     string     `json:"platform"`
	URL          string     `json:"url"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// ExtractedPost is a raw record returned by the post-extraction capability
type ExtractedPost struct {
	URL       string
	PostURL   string
	ShortCode string
	Timestamp string
}
