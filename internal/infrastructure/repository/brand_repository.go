package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/infrastructure/repository/entity"
	"storefront-ingest/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBrandRepository implements BrandRepository using MongoDB
type MongoBrandRepository struct {
	collection *mongo.Collection
}

// NewMongoBrandRepository creates a new MongoDB brand repository
func NewMongoBrandRepository(db *mongo.Database) ports.BrandRepository {
	return &MongoBrandRepository{
		collection: db.Collection(BrandsCollection),
	}
}

// Create inserts a new brand and assigns its id
func (r *MongoBrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	doc := entity.MongoBrandDocFromDomain(brand)
	doc.ID = primitive.NewObjectID()
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("brand with domain %s: %w", brand.Domain, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}

	brand.ID = doc.ID.Hex()
	brand.CreatedAt = doc.CreatedAt
	brand.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetByID retrieves a brand by id
func (r *MongoBrandRepository) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetByDomain retrieves a brand by its canonical domain
func (r *MongoBrandRepository) GetByDomain(ctx context.Context, storeDomain string) (*domain.Brand, error) {
	return r.findOne(ctx, bson.M{"domain": storeDomain})
}

// FindByName retrieves a brand by case-insensitive exact name
func (r *MongoBrandRepository) FindByName(ctx context.Context, name string) (*domain.Brand, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	return r.findOne(ctx, bson.M{"name": pattern})
}

func (r *MongoBrandRepository) findOne(ctx context.Context, filter bson.M) (*domain.Brand, error) {
	var doc entity.MongoBrandDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves all brands in registration order
func (r *MongoBrandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer cursor.Close(ctx)

	brands := []*domain.Brand{}
	for cursor.Next(ctx) {
		var doc entity.MongoBrandDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode brand: %w", err)
		}
		brands = append(brands, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return brands, nil
}

// ReplaceCatalogSummary overwrites the brand's collection summary and count
func (r *MongoBrandRepository) ReplaceCatalogSummary(ctx context.Context, id string, summary []domain.CollectionSummary, syncedAt time.Time) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	docs := entity.CollectionSummaryDocsFromDomain(summary)
	update := bson.M{"$set": bson.M{
		"collections":     docs,
		"collectionCount": len(docs),
		"lastSyncedAt":    syncedAt,
		"updatedAt":       time.Now(),
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update brand summary: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{Resource: "brand " + id}
	}
	return nil
}

// UpdateStatus sets the brand's lifecycle status
func (r *MongoBrandRepository) UpdateStatus(ctx context.Context, id string, status domain.BrandStatus) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update brand status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{Resource: "brand " + id}
	}
	return nil
}
