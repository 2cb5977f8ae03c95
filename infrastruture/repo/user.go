package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameConflict = errors.New("username conflict")
)

var _ i.UserRepo = &UserRepo{}

// UserRepo handles the persistence of user models.
type UserRepo struct {
	collection *mongo.Collection
}

// NewUserRepo creates a new UserRepo with the given MongoDB client, database name, and collection name.
func NewUserRepo(client *mongo.Client, dbName, collectionName string) *UserRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &UserRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the unique username index.
func (u *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := u.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save inserts or updates a user in the repository.
// If the user already exists, it updates the existing record.
// If the user does not exist, it adds a new record.
func (u *UserRepo) Save(user *dmn.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	filter := bson.M{"_id": user.ID}
	update := bson.M{
		"$set": bson.M{
			"username":     user.Username,
			"passwordHash": user.PasswordHash,
			"updatedAt":    time.Now(),
		},
		"$setOnInsert": bson.M{
			"levelsCompleted": user.LevelsCompleted,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := u.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUsernameConflict
		}
		return fmt.Errorf("unexpected error: %w", err)
	}

	return nil
}

// ByID retrieves a user by their ID.
// Returns an error if the user is not found or if an unexpected error occurs.
func (u *UserRepo) ByID(id uuid.UUID) (*dmn.User, error) {
	return u.findOne(bson.M{"_id": id})
}

// ByUsername retrieves a user by their username.
// Returns an error if the user is not found or if an unexpected error occurs.
func (u *UserRepo) ByUsername(username string) (*dmn.User, error) {
	return u.findOne(bson.M{"username": username})
}

// AddCompletedLevels increments the user's finished level counter.
func (u *UserRepo) AddCompletedLevels(id uuid.UUID, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := u.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"levelsCompleted": n},
	})
	if err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (u *UserRepo) findOne(filter bson.M) (*dmn.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var user dmn.User
	if err := u.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &user, nil
}
