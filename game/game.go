package game

import (
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
	"github.com/google/uuid"
)

// Action types a client can send.
const (
	ActionMove  = "move"  // Movement intents for the next tick.
	ActionLevel = "level" // Request the current level description again.
)

// Action is a decoded client message.
type Action struct {
	Type string `json:"type,omitempty"`
	motion.Intents
}

// Completion reports a level finished during a run.
type Completion struct {
	RunID    uuid.UUID `json:"run_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Level    int       `json:"level"`
	Seed     int64     `json:"seed"`
	Ticks    uint64    `json:"ticks"` // Ticks spent on the level.

	Next *LevelSnapshot `json:"next,omitempty"` // The level that replaced it.
}

// Summary is the final state of a run.
type Summary struct {
	RunID     uuid.UUID `json:"run_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Level     int       `json:"level"`     // Level being played when the run ended.
	Completed int       `json:"completed"` // Number of levels finished.
	Ticks     uint64    `json:"ticks"`     // Ticks across the whole run.
}

// Encoder defines the wire format of run traffic.
type Encoder interface {
	MarshalAction(Action) ([]byte, error)
	UnmarshalAction([]byte) (Action, error)
	MarshalTick(level int, result motion.TickResult) ([]byte, error)
	MarshalLevel(snapshot LevelSnapshot, message string) ([]byte, error)
	MarshalEnd(Summary) ([]byte, error)
}

// Channels is the transport-facing side of a run.
type Channels interface {
	// Submit queues an encoded action. Returns false once the run has stopped.
	Submit(action []byte) bool
	// States yields encoded tick and level frames. Closed when the run stops.
	States() <-chan []byte
	// End yields the encoded summary once. Closed when the run stops.
	End() <-chan []byte
}
