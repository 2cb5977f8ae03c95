package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game/maze"
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEncoder struct{}

type stubFrame struct {
	Type      string `json:"type"`
	Level     int    `json:"level"`
	Tick      uint64 `json:"tick"`
	Message   string `json:"message"`
	Completed int    `json:"completed"`
}

func (stubEncoder) MarshalAction(a Action) ([]byte, error) {
	return json.Marshal(a)
}

func (stubEncoder) UnmarshalAction(b []byte) (Action, error) {
	var a Action
	err := json.Unmarshal(b, &a)
	return a, err
}

func (stubEncoder) MarshalTick(level int, r motion.TickResult) ([]byte, error) {
	return json.Marshal(stubFrame{Type: "tick", Level: level, Tick: r.Tick})
}

func (stubEncoder) MarshalLevel(s LevelSnapshot, message string) ([]byte, error) {
	return json.Marshal(stubFrame{Type: "level", Level: s.Number, Message: message})
}

func (stubEncoder) MarshalEnd(s Summary) ([]byte, error) {
	return json.Marshal(stubFrame{Type: "end", Level: s.Level, Completed: s.Completed})
}

func decodeFrame(t *testing.T, b []byte) stubFrame {
	t.Helper()
	var f stubFrame
	require.NoError(t, json.Unmarshal(b, &f))
	return f
}

func readFrame(t *testing.T, ch <-chan []byte) stubFrame {
	t.Helper()
	select {
	case b, ok := <-ch:
		require.True(t, ok, "channel closed")
		return decodeFrame(t, b)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return stubFrame{}
	}
}

func newTestRun(t *testing.T, size int, onComplete func(Completion)) *Run {
	t.Helper()
	r, err := NewRun(uuid.New(), uuid.New(), RunConfig{
		Width:      size,
		Height:     size,
		Seed:       42,
		Tick:       time.Millisecond,
		Params:     motion.DefaultParams(),
		OnComplete: onComplete,
	}, stubEncoder{})
	require.NoError(t, err)
	return r
}

func TestNewRunValidation(t *testing.T) {
	cfg := RunConfig{Width: 5, Height: 5, Tick: time.Millisecond, Params: motion.DefaultParams()}

	_, err := NewRun(uuid.New(), uuid.New(), cfg, nil)
	assert.ErrorIs(t, err, ErrNilEncoder)

	noTick := cfg
	noTick.Tick = 0
	_, err = NewRun(uuid.New(), uuid.New(), noTick, stubEncoder{})
	assert.ErrorIs(t, err, ErrInvalidTick)

	badSize := cfg
	badSize.Width = -1
	_, err = NewRun(uuid.New(), uuid.New(), badSize, stubEncoder{})
	assert.ErrorIs(t, err, maze.ErrInvalidDimensions)
}

func TestRunStepWithoutGoal(t *testing.T) {
	r := newTestRun(t, 21, nil)

	res := r.Step()

	assert.Equal(t, uint64(1), res.Tick)
	assert.Nil(t, res.Goal)
	assert.True(t, res.Agent.OnGround)
	assert.Equal(t, 1, r.Level().Number)

	f := readFrame(t, r.States())
	assert.Equal(t, "tick", f.Type)
	assert.Equal(t, 1, f.Level)
}

func TestRunAppliesQueuedIntents(t *testing.T) {
	r := newTestRun(t, 21, nil)

	r.handleAction([]byte(`{"forward":true}`))
	r.handleAction([]byte(`{"strafe_right":true}`))
	res := r.Step()
	assert.InDelta(t, 0.01, res.Agent.Velocity.Z, 1e-9)
	assert.InDelta(t, 0.01, res.Agent.Velocity.X, 1e-9)

	res = r.Step()
	assert.Equal(t, 0.0, res.Agent.Velocity.X, "intents apply to a single tick")
	assert.Equal(t, 0.0, res.Agent.Velocity.Z)

	r.handleAction([]byte(`not json`))
	r.Step()
}

func TestRunAdvancesLevelOnGoal(t *testing.T) {
	completions := make(chan Completion, 4)
	// A 3x3 maze has a single open cell, so the agent spawns on the exit.
	r := newTestRun(t, 3, func(c Completion) { completions <- c })
	firstSeed := r.Level().Seed

	res := r.Step()
	require.NotNil(t, res.Goal)
	assert.Equal(t, 2, r.Level().Number)

	res = r.Step()
	require.NotNil(t, res.Goal)
	assert.Equal(t, 3, r.Level().Number)

	t.Run("stale completion is ignored", func(t *testing.T) {
		r.Lock()
		r.completeLevel(1, 10)
		r.completeLevel(2, 10)
		r.Unlock()
		assert.Equal(t, 3, r.Level().Number)
	})

	r.Stop()
	close(completions)

	var got []Completion
	for c := range completions {
		got = append(got, c)
	}
	require.Len(t, got, 2)
	levels := []int{got[0].Level, got[1].Level}
	assert.ElementsMatch(t, []int{1, 2}, levels)
	for _, c := range got {
		assert.Equal(t, r.ID, c.RunID)
		assert.Equal(t, r.PlayerID, c.PlayerID)
		assert.Equal(t, uint64(1), c.Ticks)
		require.NotNil(t, c.Next)
		assert.Equal(t, c.Level+1, c.Next.Number)
		if c.Level == 1 {
			assert.Equal(t, firstSeed, c.Seed)
		}
	}

	s := r.Summary()
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, uint64(2), s.Ticks)
}

func TestRunPublishesLevelFrames(t *testing.T) {
	r := newTestRun(t, 3, nil)

	r.Step()

	tick := readFrame(t, r.States())
	assert.Equal(t, "tick", tick.Type)
	assert.Equal(t, 1, tick.Level)

	level := readFrame(t, r.States())
	assert.Equal(t, "level", level.Type)
	assert.Equal(t, 2, level.Level)
	assert.Equal(t, "Level 2 - Find the exit!", level.Message)

	r.handleAction([]byte(`{"type":"level"}`))
	again := readFrame(t, r.States())
	assert.Equal(t, "level", again.Type)
	assert.Equal(t, 2, again.Level)
}

func TestRunDropsOldestFrames(t *testing.T) {
	r := newTestRun(t, 21, nil)

	for i := 0; i < stateBuffer+4; i++ {
		r.Step()
	}

	assert.Len(t, r.StateChan, stateBuffer)
	f := readFrame(t, r.States())
	assert.Equal(t, uint64(5), f.Tick)
}

func TestRunLoop(t *testing.T) {
	r := newTestRun(t, 21, nil)
	r.cfg.Tick = 20 * time.Millisecond
	done := make(chan struct{})
	go func() {
		r.Start()
		close(done)
	}()

	first := readFrame(t, r.States())
	assert.Equal(t, "level", first.Type)
	assert.Equal(t, "Level 1 - Find the exit!", first.Message)

	require.True(t, r.Submit([]byte(`{"forward":true}`)))

	tick := readFrame(t, r.States())
	assert.Equal(t, "tick", tick.Type)

	r.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}

	end := readFrame(t, r.End())
	assert.Equal(t, "end", end.Type)
	assert.Equal(t, 1, end.Level)

	for range r.States() {
	}
	_, open := <-r.End()
	assert.False(t, open)

	assert.False(t, r.Submit([]byte(`{"forward":true}`)))
	r.Stop()
}

func TestRunStopWithoutStart(t *testing.T) {
	r := newTestRun(t, 5, nil)

	r.Stop()

	end := readFrame(t, r.End())
	assert.Equal(t, "end", end.Type)
	assert.False(t, r.Submit([]byte(`{}`)))

	r.Start()
}
