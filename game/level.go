package game

import (
	"fmt"

	"github.com/beka-birhanu/vinom-labyrinth/game/maze"
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
)

// Level is one generated maze ready to be played.
type Level struct {
	Number int
	Seed   int64
	Grid   *maze.Grid
	Start  maze.Position
	Exit   maze.Position
	World  motion.World
}

// LevelSnapshot is the serializable description of a level.
type LevelSnapshot struct {
	Number     int           `json:"number"`
	Seed       int64         `json:"seed"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Rows       []string      `json:"rows"`
	Start      maze.Position `json:"start"`
	Exit       maze.Position `json:"exit"`
	PathLength int           `json:"path_length"`
	Spawn      motion.Vec3   `json:"spawn"`
	CellSize   float64       `json:"cell_size"`
	WallHeight float64       `json:"wall_height"`
}

// NewLevel generates level number from seed. Dimensions are normalized by maze.NewGrid.
func NewLevel(number, width, height int, seed int64) (*Level, error) {
	grid, start, exit, err := maze.Generate(width, height, seed)
	if err != nil {
		return nil, fmt.Errorf("generate level %d: %w", number, err)
	}

	return &Level{
		Number: number,
		Seed:   seed,
		Grid:   grid,
		Start:  start,
		Exit:   exit,
		World:  BuildWorld(grid),
	}, nil
}

// Spawn returns the agent's starting point.
func (l *Level) Spawn() motion.Vec3 {
	return SpawnPoint(l.Start)
}

// Message is the banner shown when the level starts.
func (l *Level) Message() string {
	return fmt.Sprintf("Level %d - Find the exit!", l.Number)
}

// Snapshot describes the level for clients and storage.
func (l *Level) Snapshot() LevelSnapshot {
	return LevelSnapshot{
		Number:     l.Number,
		Seed:       l.Seed,
		Width:      l.Grid.Width(),
		Height:     l.Grid.Height(),
		Rows:       l.Grid.Rows(),
		Start:      l.Start,
		Exit:       l.Exit,
		PathLength: maze.Distances(l.Grid, l.Start)[l.Exit],
		Spawn:      l.Spawn(),
		CellSize:   maze.CellSize,
		WallHeight: WallHeight,
	}
}
