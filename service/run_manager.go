package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

const (
	defaultMazeSize      = 20
	defaultTick          = 16 * time.Millisecond
	defaultAttachTimeout = 30 * time.Second
	completionDeadline   = 5 * time.Second
)

// Run errors.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunNotOwned = errors.New("run belongs to another player")
)

var _ i.RunManager = &RunManager{}

// RunManagerConfig holds the dependencies and settings of a RunManager.
type RunManagerConfig struct {
	Width         int
	Height        int
	Tick          time.Duration
	AttachTimeout time.Duration  // A run nobody attaches to within this time is stopped.
	Params        *motion.Params // Defaults to motion.DefaultParams.
	Encoder       game.Encoder
	Store         i.LevelStore
	Runs          i.RunRepo
	Users         i.UserRepo
	Leaderboard   i.Leaderboard
	Logger        i.Logger
	Seeds         func() int64
	Clock         func() time.Time
}

// runEntry is a run owned by the manager.
type runEntry struct {
	run      *game.Run
	attached bool
	idle     *time.Timer
}

// levelCursor is the newest level of a run written to the level store.
type levelCursor struct {
	sync.Mutex
	number int
}

// RunManager starts runs, hands their channels to transports and records
// every finished level.
type RunManager struct {
	cfg         RunManagerConfig
	runs        map[uuid.UUID]*runEntry
	playerToRun map[uuid.UUID]uuid.UUID
	sync.RWMutex
}

// NewRunManager creates a RunManager.
func NewRunManager(c RunManagerConfig) (*RunManager, error) {
	if c.Encoder == nil || c.Store == nil || c.Runs == nil || c.Users == nil || c.Leaderboard == nil || c.Logger == nil {
		return nil, ErrNilDependency
	}
	if c.Width <= 0 {
		c.Width = defaultMazeSize
	}
	if c.Height <= 0 {
		c.Height = defaultMazeSize
	}
	if c.Tick <= 0 {
		c.Tick = defaultTick
	}
	if c.AttachTimeout <= 0 {
		c.AttachTimeout = defaultAttachTimeout
	}
	if c.Params == nil {
		params := motion.DefaultParams()
		c.Params = &params
	}
	if c.Seeds == nil {
		c.Seeds = NewSeedSource(time.Now().UnixNano())
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}

	return &RunManager{
		cfg:         c,
		runs:        make(map[uuid.UUID]*runEntry),
		playerToRun: make(map[uuid.UUID]uuid.UUID),
	}, nil
}

// StartRun implements i.RunManager. A player has at most one run; starting
// a new one stops the previous. The run is stopped if no transport attaches
// within the attach timeout.
func (m *RunManager) StartRun(ctx context.Context, playerID uuid.UUID) (uuid.UUID, *game.LevelSnapshot, error) {
	cursor := &levelCursor{}
	run, err := game.NewRun(uuid.New(), playerID, game.RunConfig{
		Width:  m.cfg.Width,
		Height: m.cfg.Height,
		Seed:   m.cfg.Seeds(),
		Tick:   m.cfg.Tick,
		Params: *m.cfg.Params,
		OnComplete: func(c game.Completion) {
			m.handleCompletion(c, cursor)
		},
	}, m.cfg.Encoder)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("creating run: %w", err)
	}

	snapshot := run.Level().Snapshot()
	if err := m.cfg.Store.Save(ctx, run.ID, snapshot); err != nil {
		m.cfg.Logger.Warning(fmt.Sprintf("Saving first level of run %s: %v", run.ID, err))
	} else {
		cursor.number = snapshot.Number
	}

	entry := &runEntry{run: run}
	m.Lock()
	previous, hadPrevious := m.runs[m.playerToRun[playerID]]
	if hadPrevious {
		delete(m.runs, previous.run.ID)
		previous.idle.Stop()
	}
	m.runs[run.ID] = entry
	m.playerToRun[playerID] = run.ID
	entry.idle = time.AfterFunc(m.cfg.AttachTimeout, func() { m.stopUnattached(run.ID) })
	m.Unlock()

	if hadPrevious {
		previous.run.Stop()
		m.cfg.Logger.Info(fmt.Sprintf("Replaced run %s of player %s", previous.run.ID, playerID))
	}

	go run.Start()
	m.cfg.Logger.Info(fmt.Sprintf("Started run %s for player %s (seed=%d)", run.ID, playerID, snapshot.Seed))
	return run.ID, &snapshot, nil
}

// Attach implements i.RunManager.
func (m *RunManager) Attach(runID, playerID uuid.UUID) (game.Channels, error) {
	m.Lock()
	defer m.Unlock()

	entry, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	if entry.run.PlayerID != playerID {
		return nil, ErrRunNotOwned
	}
	entry.attached = true
	entry.idle.Stop()
	return entry.run, nil
}

// StopRun implements i.RunManager.
func (m *RunManager) StopRun(runID uuid.UUID) error {
	m.Lock()
	entry, ok := m.runs[runID]
	if !ok {
		m.Unlock()
		return ErrRunNotFound
	}
	delete(m.runs, runID)
	if m.playerToRun[entry.run.PlayerID] == runID {
		delete(m.playerToRun, entry.run.PlayerID)
	}
	entry.idle.Stop()
	m.Unlock()

	entry.run.Stop()
	s := entry.run.Summary()
	m.cfg.Logger.Info(fmt.Sprintf("Stopped run %s: level=%d completed=%d ticks=%d", runID, s.Level, s.Completed, s.Ticks))
	return nil
}

// StopAll implements i.RunManager.
func (m *RunManager) StopAll() {
	m.Lock()
	runs := make([]*game.Run, 0, len(m.runs))
	for _, entry := range m.runs {
		entry.idle.Stop()
		runs = append(runs, entry.run)
	}
	m.runs = make(map[uuid.UUID]*runEntry)
	m.playerToRun = make(map[uuid.UUID]uuid.UUID)
	m.Unlock()

	var wg sync.WaitGroup
	for _, run := range runs {
		wg.Add(1)
		go func(r *game.Run) {
			defer wg.Done()
			r.Stop()
		}(run)
	}
	wg.Wait()
	m.cfg.Logger.Info(fmt.Sprintf("Stopped %d runs", len(runs)))
}

// Active returns the number of running runs.
func (m *RunManager) Active() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.runs)
}

// stopUnattached stops a run that no transport has attached to.
func (m *RunManager) stopUnattached(runID uuid.UUID) {
	m.RLock()
	entry, ok := m.runs[runID]
	idle := ok && !entry.attached
	m.RUnlock()
	if !idle {
		return
	}

	if err := m.StopRun(runID); err == nil {
		m.cfg.Logger.Warning(fmt.Sprintf("Run %s stopped: nobody attached within %s", runID, m.cfg.AttachTimeout))
	}
}

// handleCompletion persists a finished level and stores the level that
// replaced it. The completion marker makes repeated reports for the same run
// and level a no-op. cursor may be nil when the next level is not stored.
func (m *RunManager) handleCompletion(c game.Completion, cursor *levelCursor) {
	ctx, cancel := context.WithTimeout(context.Background(), completionDeadline)
	defer cancel()

	first, err := m.cfg.Store.MarkCompleted(ctx, c.RunID, c.Level)
	if err != nil {
		m.cfg.Logger.Error(fmt.Sprintf("Marking level %d of run %s: %v", c.Level, c.RunID, err))
		return
	}
	if !first {
		m.cfg.Logger.Warning(fmt.Sprintf("Level %d of run %s already recorded", c.Level, c.RunID))
		return
	}

	record, err := dmn.NewRunRecord(dmn.RunRecordConfig{
		RunID:       c.RunID,
		PlayerID:    c.PlayerID,
		Level:       c.Level,
		Seed:        c.Seed,
		Ticks:       c.Ticks,
		CompletedAt: m.cfg.Clock().UTC(),
	})
	if err != nil {
		m.cfg.Logger.Error(fmt.Sprintf("Creating record for run %s: %v", c.RunID, err))
		return
	}
	if err := m.cfg.Runs.Save(record); err != nil {
		m.cfg.Logger.Error(fmt.Sprintf("Saving record for run %s: %v", c.RunID, err))
	}

	if err := m.cfg.Users.AddCompletedLevels(c.PlayerID, 1); err != nil {
		m.cfg.Logger.Warning(fmt.Sprintf("Updating player %s: %v", c.PlayerID, err))
	}

	if _, err := m.cfg.Leaderboard.Submit(ctx, c.Level, c.PlayerID, c.Ticks); err != nil {
		m.cfg.Logger.Error(fmt.Sprintf("Submitting score for run %s: %v", c.RunID, err))
	}

	m.saveNextLevel(ctx, c, cursor)

	m.cfg.Logger.Info(fmt.Sprintf("Player %s finished level %d of run %s in %d ticks", c.PlayerID, c.Level, c.RunID, c.Ticks))
}

// saveNextLevel writes the run's new level under the run ID. Completions are
// reported concurrently, so an older level never overwrites a newer one.
func (m *RunManager) saveNextLevel(ctx context.Context, c game.Completion, cursor *levelCursor) {
	if cursor == nil || c.Next == nil {
		return
	}

	cursor.Lock()
	defer cursor.Unlock()
	if c.Next.Number <= cursor.number {
		return
	}
	if err := m.cfg.Store.Save(ctx, c.RunID, *c.Next); err != nil {
		m.cfg.Logger.Warning(fmt.Sprintf("Saving level %d of run %s: %v", c.Next.Number, c.RunID, err))
		return
	}
	cursor.number = c.Next.Number
}
