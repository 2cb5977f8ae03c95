package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

const (
	defaultMaxDimension = 101
)

// Level errors.
var (
	ErrInvalidDimensions = errors.New("level dimensions must be positive")
	ErrLevelTooLarge     = errors.New("level dimensions exceed the limit")
)

var _ i.LevelGenerator = &LevelService{}

// LevelOptions tunes a LevelService.
type LevelOptions struct {
	MaxDimension int          // Largest accepted width or height.
	Seeds        func() int64 // Source of seeds when the caller gives none.
}

// LevelService generates standalone levels and keeps them in the level store.
type LevelService struct {
	store  i.LevelStore
	logger i.Logger
	opts   *LevelOptions
}

// NewLevelService creates a LevelService. Zero options fall back to defaults.
func NewLevelService(store i.LevelStore, logger i.Logger, opts *LevelOptions) (*LevelService, error) {
	if store == nil || logger == nil {
		return nil, ErrNilDependency
	}
	if opts == nil {
		opts = &LevelOptions{}
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = defaultMaxDimension
	}
	if opts.Seeds == nil {
		opts.Seeds = NewSeedSource(time.Now().UnixNano())
	}

	return &LevelService{
		store:  store,
		logger: logger,
		opts:   opts,
	}, nil
}

// Generate implements i.LevelGenerator.
func (ls *LevelService) Generate(ctx context.Context, width, height int, seed *int64) (*game.Level, uuid.UUID, error) {
	if width <= 0 || height <= 0 {
		return nil, uuid.Nil, ErrInvalidDimensions
	}
	if width > ls.opts.MaxDimension || height > ls.opts.MaxDimension {
		return nil, uuid.Nil, ErrLevelTooLarge
	}

	s := ls.opts.Seeds()
	if seed != nil {
		s = *seed
	}

	level, err := game.NewLevel(1, width, height, s)
	if err != nil {
		return nil, uuid.Nil, err
	}

	id := uuid.New()
	if err := ls.store.Save(ctx, id, level.Snapshot()); err != nil {
		ls.logger.Error(fmt.Sprintf("Saving level %s: %v", id, err))
		return nil, uuid.Nil, fmt.Errorf("saving level: %w", err)
	}

	ls.logger.Info(fmt.Sprintf("Generated level %s: %dx%d seed=%d", id, level.Grid.Width(), level.Grid.Height(), s))
	return level, id, nil
}

// ByID implements i.LevelGenerator.
func (ls *LevelService) ByID(ctx context.Context, id uuid.UUID) (*game.LevelSnapshot, error) {
	return ls.store.Load(ctx, id)
}

// NewSeedSource returns a goroutine-safe generator of level seeds.
func NewSeedSource(seed int64) func() int64 {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Int63()
	}
}
