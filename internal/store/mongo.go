package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"product-catalog-browser/internal/domain"
)

// MongoSource loads the catalog from a MongoDB collection whose documents use
// the product JSON field names (id, name, price, category, inStock, description).
type MongoSource struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoSource creates a MongoSource over collection.
func NewMongoSource(collection *mongo.Collection) *MongoSource {
	return &MongoSource{
		collection: collection,
		timeout:    10 * time.Second,
	}
}

func (s *MongoSource) Load(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: MongoSource failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("store: MongoSource failed to decode products: %w", err)
	}

	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// ConnectMongo opens a client for uri and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: failed to ping MongoDB: %w", err)
	}
	return client, nil
}
