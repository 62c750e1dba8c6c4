package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/infrastructure/repository/entity"
	"storefront-ingest/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCollectionRepository implements CollectionRepository using MongoDB
type MongoCollectionRepository struct {
	collection *mongo.Collection
}

// NewMongoCollectionRepository creates a new MongoDB collection repository
func NewMongoCollectionRepository(db *mongo.Database) ports.CollectionRepository {
	return &MongoCollectionRepository{
		collection: db.Collection(CollectionsCollection),
	}
}

// Upsert creates or updates the collection keyed on (brand, source id)
func (r *MongoCollectionRepository) Upsert(ctx context.Context, brandID string, fields domain.CollectionFields) (domain.UpsertResult, error) {
	brandObjID, err := parseObjectID(brandID)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	now := time.Now()
	filter := bson.D{{Key: "brandId", Value: brandObjID}, {Key: "sourceId", Value: fields.SourceID}}
	update := bson.M{
		"$set":         entity.CollectionFieldsSet(brandObjID, fields, now),
		"$setOnInsert": bson.M{"createdAt": now, "products": []primitive.ObjectID{}},
	}

	res, err := upsertByKey(ctx, r.collection, filter, update)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("failed to upsert collection: %w", err)
	}
	return res, nil
}

// GetByID retrieves a collection by id
func (r *MongoCollectionRepository) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc entity.MongoCollectionDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return doc.ToDomain(), nil
}

// SetItemIDs replaces the collection's item list
func (r *MongoCollectionRepository) SetItemIDs(ctx context.Context, collectionID string, itemIDs []string) error {
	objID, err := parseObjectID(collectionID)
	if err != nil {
		return err
	}
	items, err := parseObjectIDs(itemIDs)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"products": items, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set collection items: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{Resource: "collection " + collectionID}
	}
	return nil
}

// DeleteOrphaned removes collections whose brand is not listed
func (r *MongoCollectionRepository) DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error) {
	n, err := deleteOrphaned(ctx, r.collection, brandIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned collections: %w", err)
	}
	return n, nil
}

// MongoItemRepository implements ItemRepository using MongoDB
type MongoItemRepository struct {
	collection *mongo.Collection
}

// NewMongoItemRepository creates a new MongoDB item repository
func NewMongoItemRepository(db *mongo.Database) ports.ItemRepository {
	return &MongoItemRepository{
		collection: db.Collection(ItemsCollection),
	}
}

// Upsert creates or updates the item keyed on (brand, source id)
func (r *MongoItemRepository) Upsert(ctx context.Context, brandID string, collectionID string, fields domain.ItemFields) (domain.UpsertResult, error) {
	brandObjID, err := parseObjectID(brandID)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	var collectionObjID *primitive.ObjectID
	if collectionID != "" {
		objID, err := parseObjectID(collectionID)
		if err != nil {
			return domain.UpsertResult{}, err
		}
		collectionObjID = &objID
	}

	now := time.Now()
	filter := bson.D{{Key: "brandId", Value: brandObjID}, {Key: "sourceId", Value: fields.SourceID}}
	update := bson.M{
		"$set":         entity.ItemFieldsSet(brandObjID, collectionObjID, fields, now),
		"$setOnInsert": bson.M{"createdAt": now},
	}

	res, err := upsertByKey(ctx, r.collection, filter, update)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("failed to upsert item: %w", err)
	}
	return res, nil
}

// DeleteOrphaned removes items whose brand is not listed
func (r *MongoItemRepository) DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error) {
	n, err := deleteOrphaned(ctx, r.collection, brandIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned items: %w", err)
	}
	return n, nil
}
