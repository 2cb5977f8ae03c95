package repo

import (
	"context"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultRecordLimit = 50

var _ i.RunRepo = &RunRepo{}

// RunRepo stores the levels players have finished.
type RunRepo struct {
	collection *mongo.Collection
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	return &RunRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the per-player lookup index.
func (r *RunRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "playerID", Value: 1}, {Key: "completedAt", Value: -1}},
	})
	return err
}

// Save inserts a record.
func (r *RunRepo) Save(record *dmn.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}
	return nil
}

// ByPlayer returns the player's most recent records, newest first.
// A non-positive limit falls back to the default.
func (r *RunRepo) ByPlayer(playerID uuid.UUID, limit int64) ([]*dmn.RunRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = defaultRecordLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"playerID": playerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*dmn.RunRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return records, nil
}
