package repository

import (
	"context"
	"fmt"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/infrastructure/repository/entity"
	"storefront-ingest/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSocialPostRepository implements SocialPostRepository using MongoDB
type MongoSocialPostRepository struct {
	collection *mongo.Collection
}

// NewMongoSocialPostRepository creates a new MongoDB social post repository
func NewMongoSocialPostRepository(db *mongo.Database) ports.SocialPostRepository {
	return &MongoSocialPostRepository{
		collection: db.Collection(SocialPostsCollection),
	}
}

// UpsertByURL creates or refreshes the post keyed on its URL
func (r *MongoSocialPostRepository) UpsertByURL(ctx context.Context, post *domain.SocialPost) (domain.UpsertResult, error) {
	brandObjID, err := parseObjectID(post.BrandID)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	filter := bson.D{{Key: "url", Value: post.URL}}
	update := bson.M{"$set": bson.M{
		"brandId":      brandObjID,
		"platform":     post.Platform,
		"url":          post.URL,
		"postedAt":     post.PostedAt,
		"discoveredAt": post.DiscoveredAt,
	}}

	res, err := upsertByKey(ctx, r.collection, filter, update)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("failed to upsert social post: %w", err)
	}
	return res, nil
}

// ListByBrand retrieves the most recently discovered posts of a brand
func (r *MongoSocialPostRepository) ListByBrand(ctx context.Context, brandID string, limit int) ([]*domain.SocialPost, error) {
	brandObjID, err := parseObjectID(brandID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "discoveredAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"brandId": brandObjID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list social posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*domain.SocialPost{}
	for cursor.Next(ctx) {
		var doc entity.MongoSocialPostDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode social post: %w", err)
		}
		posts = append(posts, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return posts, nil
}
