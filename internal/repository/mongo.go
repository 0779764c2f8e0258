package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phuy1125/vin2/internal/domain"
)

// MongoStore implements ItineraryStore on a MongoDB collection named
// "itineraries". Documents keep the owner under "user" and the days under
// "itinerary".
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ ItineraryStore = (*MongoStore)(nil)

// NewMongoStore connects to uri and ensures the owner index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection("itineraries")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoStore{client: client, collection: coll}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Create inserts a new itinerary.
func (s *MongoStore) Create(ctx context.Context, it *domain.Itinerary) error {
	_, err := s.collection.InsertOne(ctx, it)
	return err
}

// Get retrieves an itinerary by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	var it domain.Itinerary
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("itinerary %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListByOwner lists the owner's itineraries in creation order.
func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Itinerary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Itinerary
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace swaps the whole document in one write, provided updated_at still
// holds the expected value.
func (s *MongoStore) Replace(ctx context.Context, it *domain.Itinerary, expected time.Time) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": it.ID, "updated_at": expected}, it)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": it.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("itinerary %s: %w", it.ID, domain.ErrNotFound)
	}
	return fmt.Errorf("itinerary %s was modified: %w", it.ID, domain.ErrConflict)
}

// Delete removes an itinerary.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("itinerary %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
