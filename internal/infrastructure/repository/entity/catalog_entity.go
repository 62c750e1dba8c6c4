package entity

import (
	"time"

	"storefront-ingest/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCollectionDoc represents a storefront collection in MongoDB.
// (brandId, sourceId) is unique.
type MongoCollectionDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	BrandID     primitive.ObjectID   `bson:"brandId"`
	SourceID    string               `bson:"sourceId"`
	Title       string               `bson:"title"`
	Handle      string               `bson:"handle"`
	URL         *string              `bson:"url"`
	LaunchedAt  *time.Time           `bson:"launchedAt"`
	Description *string              `bson:"description"`
	Images      []string             `bson:"images"`
	Items       []primitive.ObjectID `bson:"products"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoCollectionDoc) ToDomain() *domain.Collection {
	itemIDs := make([]string, 0, len(d.Items))
	for _, id := range d.Items {
		itemIDs = append(itemIDs, id.Hex())
	}

	return &domain.Collection{
		ID:          d.ID.Hex(),
		BrandID:     d.BrandID.Hex(),
		SourceID:    d.SourceID,
		Title:       d.Title,
		Handle:      d.Handle,
		URL:         d.URL,
		LaunchedAt:  d.LaunchedAt,
		Description: d.Description,
		Images:      nonNil(d.Images),
		ItemIDs:     itemIDs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CollectionFieldsSet builds the $set document for a collection upsert
func CollectionFieldsSet(brandID primitive.ObjectID, fields domain.CollectionFields, now time.Time) primitive.M {
	return primitive.M{
		"brandId":     brandID,
		"sourceId":    fields.SourceID,
		"title":       fields.Title,
		"handle":      fields.Handle,
		"url":         fields.URL,
		"launchedAt":  fields.LaunchedAt,
		"description": fields.Description,
		"images":      nonNil(fields.Images),
		"updatedAt":   now,
	}
}

// MongoItemDoc represents a storefront product in MongoDB.
// (brandId, sourceId) is unique.
type MongoItemDoc struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	BrandID      primitive.ObjectID    `bson:"brandId"`
	CollectionID *primitive.ObjectID   `bson:"collectionId,omitempty"`
	SourceID     string                `bson:"sourceId"`
	Title        string                `bson:"title"`
	Handle       *string               `bson:"handle"`
	Price        *primitive.Decimal128 `bson:"price"`
	Currency     *string               `bson:"currency"`
	Images       []string              `bson:"images"`
	Tags         []string              `bson:"tags"`
	ProductType  *string               `bson:"productType"`
	CreatedAt    time.Time             `bson:"createdAt"`
	UpdatedAt    time.Time             `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoItemDoc) ToDomain() *domain.Item {
	item := &domain.Item{
		ID:          d.ID.Hex(),
		BrandID:     d.BrandID.Hex(),
		SourceID:    d.SourceID,
		Title:       d.Title,
		Handle:      d.Handle,
		Price:       DecimalFromMongo(d.Price),
		Currency:    d.Currency,
		Images:      nonNil(d.Images),
		Tags:        nonNil(d.Tags),
		ProductType: d.ProductType,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.CollectionID != nil {
		item.CollectionID = d.CollectionID.Hex()
	}
	return item
}

// ItemFieldsSet builds the $set document for an item upsert
func ItemFieldsSet(brandID primitive.ObjectID, collectionID *primitive.ObjectID, fields domain.ItemFields, now time.Time) primitive.M {
	set := primitive.M{
		"brandId":     brandID,
		"sourceId":    fields.SourceID,
		"title":       fields.Title,
		"handle":      fields.Handle,
		"price":       DecimalToMongo(fields.Price),
		"currency":    fields.Currency,
		"images":      nonNil(fields.Images),
		"tags":        nonNil(fields.Tags),
		"productType": fields.ProductType,
		"updatedAt":   now,
	}
	if collectionID != nil {
		set["collectionId"] = *collectionID
	}
	return set
}

// DecimalToMongo converts a price to BSON Decimal128. Nil or unrepresentable prices map to nil.
func DecimalToMongo(d *decimal.Decimal) *primitive.Decimal128 {
	if d == nil {
		return nil
	}
	dec, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return nil
	}
	return &dec
}

// DecimalFromMongo converts a stored Decimal128 price back to a decimal
func DecimalFromMongo(d *primitive.Decimal128) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return nil
	}
	return &v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
