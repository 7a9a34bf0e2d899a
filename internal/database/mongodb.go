package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionOwnerSnapshots = "owner_snapshots"

// MongoStore is an optional snapshot store for deployments that already
// run MongoDB. Functionally identical to SQLiteStore: one document per
// owner, replaced wholesale on save.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects with conservative pooling and verifies the
// connection before returning.
func NewMongoStore(uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	if dbName == "" {
		dbName = "journeyatlas"
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collectionOwnerSnapshots),
	}

	if err := store.initialize(ctx); err != nil {
		return nil, err
	}

	log.Printf("✅ Mongo snapshot store ready (database: %s)", dbName)
	return store, nil
}

func (m *MongoStore) initialize(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create owner_snapshots index: %w", err)
	}
	return nil
}

// SaveOwner replaces the owner's snapshot document.
func (m *MongoStore) SaveOwner(ctx context.Context, snap OwnerSnapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	_, err := m.collection.ReplaceOne(
		ctx,
		bson.M{"ownerId": snap.OwnerID},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for owner %s: %w", snap.OwnerID, err)
	}
	return nil
}

// LoadOwners returns every stored snapshot.
func (m *MongoStore) LoadOwners(ctx context.Context) ([]OwnerSnapshot, error) {
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []OwnerSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	log.Println("🔌 Closing MongoDB connection...")
	return m.client.Disconnect(ctx)
}

// extractDBName pulls the database name out of a MongoDB URI, e.g.
// mongodb://localhost:27017/journeyatlas?authSource=admin -> journeyatlas.
func extractDBName(uri string) string {
	trimmed := uri
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx+1 < len(trimmed) {
		name := trimmed[idx+1:]
		if !strings.Contains(name, "@") && !strings.Contains(name, ":") {
			return name
		}
	}
	return ""
}
