package i

import (
	"context"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/google/uuid"
)

// LevelGenerator creates and retrieves standalone levels.
type LevelGenerator interface {
	// Generate builds and stores a level. A nil seed picks a random one.
	Generate(ctx context.Context, width, height int, seed *int64) (*game.Level, uuid.UUID, error)

	// ByID returns a stored level.
	ByID(ctx context.Context, id uuid.UUID) (*game.LevelSnapshot, error)
}

// RunManager owns the runs being played.
type RunManager interface {
	// StartRun creates a run for the player and starts its tick loop.
	StartRun(ctx context.Context, playerID uuid.UUID) (uuid.UUID, *game.LevelSnapshot, error)

	// Attach returns the transport side of a run owned by the player.
	Attach(runID, playerID uuid.UUID) (game.Channels, error)

	// StopRun ends a run.
	StopRun(runID uuid.UUID) error

	// StopAll ends every run.
	StopAll()
}

// Standing is a leaderboard position.
type Standing struct {
	Rank     int       `json:"rank"`
	PlayerID uuid.UUID `json:"player_id"`
	Ticks    uint64    `json:"ticks"`
}

// Leaderboard ranks players by the fewest ticks spent on a level number.
type Leaderboard interface {
	// Submit records a result. Reports whether it improved the player's best.
	Submit(ctx context.Context, level int, playerID uuid.UUID, ticks uint64) (bool, error)

	// Top returns the best n standings for a level and the number of ranked players.
	Top(ctx context.Context, level int, n int64) ([]Standing, int64, error)
}
