package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection holds one document per storage key.
const DefaultMongoCollection = "dashboard_kv"

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Mongo stores each key as a document whose value is the raw JSON text.
type Mongo struct {
	Collection *mongo.Collection
}

var _ dashboard.KeyValue = (*Mongo)(nil)

// NewMongo uses the named collection of db; empty name means DefaultMongoCollection.
func NewMongo(db *mongo.Database, collection string) *Mongo {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &Mongo{Collection: db.Collection(collection)}
}

// DialMongo connects to uri and returns the backend plus the client so the
// caller can disconnect.
func DialMongo(ctx context.Context, uri, database, collection string) (*Mongo, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("storage: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("storage: ping mongo: %w", err)
	}
	if database == "" {
		database = "crm"
	}
	return NewMongo(client.Database(database), collection), client, nil
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := m.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: mongo find %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (m *Mongo) Set(ctx context.Context, key string, value []byte) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{"value": string(value)}}
	opts := options.Update().SetUpsert(true)
	if _, err := m.Collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("storage: mongo upsert %s: %w", key, err)
	}
	return nil
}
