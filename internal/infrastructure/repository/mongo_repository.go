package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	BrandsCollection      = "brands"
	CollectionsCollection = "collections"
	ItemsCollection       = "products"
	SocialPostsCollection = "socialposts"
)

// EnsureIndexes creates the natural-key unique indexes every upsert relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		BrandsCollection: {
			{Keys: bson.D{{Key: "domain", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionsCollection: {
			{Keys: bson.D{{Key: "brandId", Value: 1}, {Key: "sourceId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ItemsCollection: {
			{Keys: bson.D{{Key: "brandId", Value: 1}, {Key: "sourceId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "collectionId", Value: 1}}},
		},
		SocialPostsCollection: {
			{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "brandId", Value: 1}, {Key: "discoveredAt", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// parseObjectID maps a malformed brand or collection reference to ErrInvalidIdentifier
func parseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q: %w", id, domain.ErrInvalidIdentifier)
	}
	return objID, nil
}

func parseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := parseObjectID(id)
		if err != nil {
			return nil, err
		}
		objIDs = append(objIDs, objID)
	}
	return objIDs, nil
}

// upsertByKey sets fields on the document matching filter, creating it if absent,
// and reports whether it was created. A concurrent insert of the same key loses
// the unique index race with a duplicate-key error; the retry then matches.
func upsertByKey(ctx context.Context, collection *mongo.Collection, filter bson.D, update bson.M) (domain.UpsertResult, error) {
	opts := options.Update().SetUpsert(true)

	var (
		res *mongo.UpdateResult
		err error
	)
	for attempt := 0; attempt < 2; attempt++ {
		res, err = collection.UpdateOne(ctx, filter, update, opts)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return domain.UpsertResult{}, err
	}

	if res.UpsertedID != nil {
		if objID, ok := res.UpsertedID.(primitive.ObjectID); ok {
			return domain.UpsertResult{ID: objID.Hex(), Created: true}, nil
		}
	}

	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&doc)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("failed to read upserted id: %w", err)
	}
	return domain.UpsertResult{ID: doc.ID.Hex(), Created: res.UpsertedCount > 0}, nil
}

// deleteOrphaned removes documents whose brandId is not in brandIDs
func deleteOrphaned(ctx context.Context, collection *mongo.Collection, brandIDs []string) (int64, error) {
	objIDs, err := parseObjectIDs(brandIDs)
	if err != nil {
		return 0, err
	}
	res, err := collection.DeleteMany(ctx, bson.M{"brandId": bson.M{"$nin": objIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
