package entity

import (
	"time"

	"storefront-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoBrandDoc represents a tracked brand in MongoDB
type MongoBrandDoc struct {
	ID              primitive.ObjectID          `bson:"_id,omitempty"`
	Name            string                      `bson:"name"`
	Domain          string                      `bson:"domain"`
	SocialProfile   string                      `bson:"socialProfile,omitempty"`
	Status          string                      `bson:"status"`
	Collections     []MongoCollectionSummaryDoc `bson:"collections"`
	CollectionCount int                         `bson:"collectionCount"`
	LastSyncedAt    *time.Time                  `bson:"lastSyncedAt,omitempty"`
	CreatedAt       time.Time                   `bson:"createdAt"`
	UpdatedAt       time.Time                   `bson:"updatedAt"`
}

// MongoCollectionSummaryDoc is the collection summary embedded in a brand
type MongoCollectionSummaryDoc struct {
	ID       primitive.ObjectID `bson:"id"`
	SourceID string             `bson:"sourceId"`
	Title    string             `bson:"title"`
	Handle   string             `bson:"handle"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoBrandDoc) ToDomain() *domain.Brand {
	collections := make([]domain.CollectionSummary, 0, len(d.Collections))
	for _, c := range d.Collections {
		collections = append(collections, domain.CollectionSummary{
			ID:       c.ID.Hex(),
			SourceID: c.SourceID,
			Title:    c.Title,
			Handle:   c.Handle,
		})
	}

	return &domain.Brand{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Domain:          d.Domain,
		SocialProfile:   d.SocialProfile,
		Status:          domain.BrandStatus(d.Status),
		Collections:     collections,
		CollectionCount: d.CollectionCount,
		LastSyncedAt:    d.LastSyncedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoBrandDocFromDomain converts a domain entity to a MongoDB document
func MongoBrandDocFromDomain(brand *domain.Brand) *MongoBrandDoc {
	doc := &MongoBrandDoc{
		Name:            brand.Name,
		Domain:          brand.Domain,
		SocialProfile:   brand.SocialProfile,
		Status:          string(brand.Status),
		Collections:     CollectionSummaryDocsFromDomain(brand.Collections),
		CollectionCount: brand.CollectionCount,
		LastSyncedAt:    brand.LastSyncedAt,
		CreatedAt:       brand.CreatedAt,
		UpdatedAt:       brand.UpdatedAt,
	}

	if brand.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(brand.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}

// CollectionSummaryDocsFromDomain converts a brand's collection summary, skipping malformed ids
func CollectionSummaryDocsFromDomain(summary []domain.CollectionSummary) []MongoCollectionSummaryDoc {
	docs := make([]MongoCollectionSummaryDoc, 0, len(summary))
	for _, c := range summary {
		objID, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			continue
		}
		docs = append(docs, MongoCollectionSummaryDoc{
			ID:       objID,
			SourceID: c.SourceID,
			Title:    c.Title,
			Handle:   c.Handle,
		})
	}
	return docs
}
