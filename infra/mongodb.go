package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfig struct {
	URI      string
	Database string
}

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(config MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test the connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB!")

	database := client.Database(config.Database)

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// EnsurePanelIndexes creates the indexes the panel queries rely on. Safe to
// call on every startup.
func (m *MongoDB) EnsurePanelIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"called_drivers": {
			{Keys: map[string]interface{}{"driver_id": 1}},
			{Keys: map[string]interface{}{"called_at": -1}},
		},
		"finalized_calls": {
			{Keys: map[string]interface{}{"driver_id": 1}},
			{Keys: map[string]interface{}{"finalized_at": -1}},
		},
		"action_history": {
			{Keys: map[string]interface{}{"timestamp": -1}},
		},
	}

	for coll, models := range indexes {
		if _, err := m.GetCollection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
