package entity

import (
	"time"

	"storefront-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSocialPostDoc represents a discovered social post in MongoDB. url is unique.
type MongoSocialPostDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	BrandID      primitive.ObjectID `bson:"brandId"`
	Platform     string             `bson:"platform"`
	URL          string             `bson:"url"`
	PostedAt     *time.Time         `bson:"postedAt"`
	DiscoveredAt time.Time          `bson:"discoveredAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSocialPostDoc) ToDomain() *domain.SocialPost {
	return &domain.SocialPost{
		ID:           d.ID.Hex(),
		BrandID:      d.BrandID.Hex(),
		Platform:     d.Platform,
		URL:          d.URL,
		PostedAt:     d.PostedAt,
		DiscoveredAt: d.DiscoveredAt,
	}
}
