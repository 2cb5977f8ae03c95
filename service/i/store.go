package i

import (
	"context"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/google/uuid"
)

// LevelStore keeps generated levels and run progress markers.
type LevelStore interface {
	// Save stores a level description under id.
	Save(ctx context.Context, id uuid.UUID, level game.LevelSnapshot) error

	// Load returns the level stored under id.
	Load(ctx context.Context, id uuid.UUID) (*game.LevelSnapshot, error)

	// MarkCompleted records that the run finished level. It reports false if
	// the level was already marked.
	MarkCompleted(ctx context.Context, runID uuid.UUID, level int) (bool, error)
}

// ScoredMember is an entry of a sorted set.
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedSet keeps members ordered by ascending score.
type SortedSet interface {
	// AddIfLower sets the member's score if it is absent or score is lower
	// than the stored one. Reports whether the set changed.
	AddIfLower(ctx context.Context, key, member string, score float64) (bool, error)

	// TopN returns up to n members with the lowest scores.
	TopN(ctx context.Context, key string, n int64) ([]ScoredMember, error)

	// Count returns the number of members.
	Count(ctx context.Context, key string) (int64, error)
}
