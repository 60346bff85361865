package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvDocument is the Mongo representation of one key.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoEngine stores one document per key in a dedicated collection.
type MongoEngine struct {
	col *mongo.Collection
}

func NewMongoEngine(col *mongo.Collection) *MongoEngine {
	return &MongoEngine{col: col}
}

func (m *MongoEngine) Get(ctx context.Context, key string) (string, bool, error) {
	var d kvDocument
	if err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	return d.Value, true, nil
}

func (m *MongoEngine) Set(ctx context.Context, key, value string) error {
	d := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": key}, d, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoEngine) Remove(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoEngine) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

func (m *MongoEngine) Name() string { return "mongo" }
