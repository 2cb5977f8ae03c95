package i

import (
	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/google/uuid"
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	Save(user *dmn.User) error

	// ByID retrieves a user by their unique ID.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByID(id uuid.UUID) (*dmn.User, error)

	// ByUsername retrieves a user by their username.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByUsername(username string) (*dmn.User, error)

	// AddCompletedLevels increments the user's finished level counter.
	AddCompletedLevels(id uuid.UUID, n int) error
}

// RunRepo stores finished levels.
type RunRepo interface {
	// Save inserts a record.
	Save(record *dmn.RunRecord) error

	// ByPlayer returns the player's most recent records, newest first.
	ByPlayer(playerID uuid.UUID, limit int64) ([]*dmn.RunRecord, error)
}
