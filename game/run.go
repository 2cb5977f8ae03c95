package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
	"github.com/google/uuid"
)

// Run-related errors.
var (
	ErrInvalidTick = errors.New("tick interval must be positive")
	ErrNilEncoder  = errors.New("encoder is required")
)

const (
	actionBuffer = 32 // Pending client actions before Submit blocks.
	stateBuffer  = 16 // Frames kept for a slow consumer before the oldest is dropped.
)

// RunConfig holds the settings of a run.
type RunConfig struct {
	Width      int           // Requested maze width, normalized per maze.NewGrid.
	Height     int           // Requested maze height, normalized per maze.NewGrid.
	Seed       int64         // Seed of the first level. Later seeds are derived from it.
	Tick       time.Duration // Interval between simulation steps in Start.
	Params     motion.Params
	OnComplete func(Completion) // Called on its own goroutine for each finished level.
}

// Run plays consecutive levels for one player. It owns the current level and
// the motion model, steps them on a fixed tick and advances to a freshly
// generated level every time the exit is reached.
type Run struct {
	ID       uuid.UUID
	PlayerID uuid.UUID

	cfg       RunConfig
	encoder   Encoder
	rng       *rand.Rand // Seeds for levels after the first.
	level     *Level
	model     *motion.Model
	pending   motion.Intents
	completed int    // Number of the last finished level.
	ticks     uint64 // Ticks across all levels.

	actionChan chan []byte
	stop       chan struct{}
	exited     chan struct{}
	stopOnce   sync.Once
	running    bool
	stopped    bool

	StateChan    chan []byte     // Encoded tick and level frames.
	EndChan      chan []byte     // Encoded summary, sent once on Stop.
	Wg           *sync.WaitGroup // Tracks completion callbacks.
	sync.RWMutex                 // Guards level, model and run progress.
}

var _ Channels = &Run{}

// NewRun creates a run positioned at the start of level 1.
func NewRun(id, playerID uuid.UUID, cfg RunConfig, e Encoder) (*Run, error) {
	if e == nil {
		return nil, ErrNilEncoder
	}
	if cfg.Tick <= 0 {
		return nil, ErrInvalidTick
	}

	level, err := NewLevel(1, cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		return nil, err
	}

	return &Run{
		ID:         id,
		PlayerID:   playerID,
		cfg:        cfg,
		encoder:    e,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		level:      level,
		model:      motion.NewModel(level.World, level.Spawn(), cfg.Params),
		actionChan: make(chan []byte, actionBuffer),
		stop:       make(chan struct{}),
		exited:     make(chan struct{}),
		StateChan:  make(chan []byte, stateBuffer),
		EndChan:    make(chan []byte, 1),
		Wg:         &sync.WaitGroup{},
	}, nil
}

// Start publishes the first level and steps the run every tick until Stop.
func (r *Run) Start() {
	r.Lock()
	if r.running || r.stopped {
		r.Unlock()
		return
	}
	r.running = true
	r.publishLevel()
	r.Unlock()
	defer close(r.exited)

	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case action := <-r.actionChan:
			r.handleAction(action)
		case <-ticker.C:
			r.Step()
		}
	}
}

// Stop ends the run, waits for pending callbacks, sends the summary and
// closes the output channels. Safe to call more than once.
func (r *Run) Stop() {
	r.stopOnce.Do(func() {
		r.Lock()
		r.stopped = true
		running := r.running
		r.Unlock()

		close(r.stop)
		if running {
			<-r.exited
		}
		r.Wg.Wait()

		if payload, err := r.encoder.MarshalEnd(r.Summary()); err == nil {
			r.EndChan <- payload
		}
		close(r.StateChan)
		close(r.EndChan)
	})
}

// Submit implements Channels.
func (r *Run) Submit(action []byte) bool {
	select {
	case <-r.stop:
		return false
	default:
	}

	select {
	case r.actionChan <- action:
		return true
	case <-r.stop:
		return false
	}
}

// States implements Channels.
func (r *Run) States() <-chan []byte {
	return r.StateChan
}

// End implements Channels.
func (r *Run) End() <-chan []byte {
	return r.EndChan
}

// handleAction decodes a client action and applies it.
func (r *Run) handleAction(payload []byte) {
	a, err := r.encoder.UnmarshalAction(payload)
	if err != nil {
		return
	}

	r.Lock()
	defer r.Unlock()
	if r.stopped {
		return
	}

	switch a.Type {
	case ActionLevel:
		r.publishLevel()
	case ActionMove, "":
		r.pending = r.pending.Merge(a.Intents)
	}
}

// Step applies the intents gathered since the previous step, advances the
// motion model by one tick and publishes the result. A goal event finishes
// the current level and loads the next one.
func (r *Run) Step() motion.TickResult {
	r.Lock()
	defer r.Unlock()

	in := r.pending
	r.pending = motion.Intents{}
	res := r.model.Update(in)
	if r.stopped {
		return res
	}
	r.ticks++

	if payload, err := r.encoder.MarshalTick(r.level.Number, res); err == nil {
		r.publish(payload)
	}

	if res.Goal != nil {
		r.completeLevel(r.level.Number, res.Tick)
	}
	return res
}

// completeLevel records the end of level number and loads the next level.
// Calls for a level that is not the current one are ignored. Must hold the lock.
func (r *Run) completeLevel(number int, ticks uint64) {
	if number != r.level.Number || number <= r.completed {
		return
	}

	next, err := NewLevel(number+1, r.cfg.Width, r.cfg.Height, r.rng.Int63())
	if err != nil {
		return
	}

	r.completed = number
	snapshot := next.Snapshot()
	c := Completion{
		RunID:    r.ID,
		PlayerID: r.PlayerID,
		Level:    number,
		Seed:     r.level.Seed,
		Ticks:    ticks,
		Next:     &snapshot,
	}
	if r.cfg.OnComplete != nil {
		r.Wg.Add(1)
		go func() {
			defer r.Wg.Done()
			r.cfg.OnComplete(c)
		}()
	}

	r.level = next
	r.model = motion.NewModel(next.World, next.Spawn(), r.cfg.Params)
	r.pending = motion.Intents{}
	r.publishLevel()
}

// publishLevel sends the current level description. Must hold the lock.
func (r *Run) publishLevel() {
	payload, err := r.encoder.MarshalLevel(r.level.Snapshot(), r.level.Message())
	if err != nil {
		return
	}
	r.publish(payload)
}

// publish hands a frame to the consumer without blocking, dropping the
// oldest buffered frame when the buffer is full.
func (r *Run) publish(payload []byte) {
	select {
	case r.StateChan <- payload:
		return
	default:
	}

	select {
	case <-r.StateChan:
	default:
	}

	select {
	case r.StateChan <- payload:
	default:
	}
}

// Level returns the level being played.
func (r *Run) Level() *Level {
	r.RLock()
	defer r.RUnlock()
	return r.level
}

// Agent returns the current agent state.
func (r *Run) Agent() motion.Agent {
	r.RLock()
	defer r.RUnlock()
	return r.model.Agent()
}

// Summary reports the run's progress.
func (r *Run) Summary() Summary {
	r.RLock()
	defer r.RUnlock()
	return Summary{
		RunID:     r.ID,
		PlayerID:  r.PlayerID,
		Level:     r.level.Number,
		Completed: r.completed,
		Ticks:     r.ticks,
	}
}
