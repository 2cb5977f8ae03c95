package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidLevel = errors.New("level number must be positive")

// RunRecord is a level finished by a player during a run.
type RunRecord struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	RunID       uuid.UUID `bson:"runID" json:"run_id"`
	PlayerID    uuid.UUID `bson:"playerID" json:"player_id"`
	Level       int       `bson:"level" json:"level"`
	Seed        int64     `bson:"seed" json:"seed"`
	Ticks       uint64    `bson:"ticks" json:"ticks"`
	CompletedAt time.Time `bson:"completedAt" json:"completed_at"`
}

// RunRecordConfig holds parameters for creating a RunRecord.
type RunRecordConfig struct {
	RunID       uuid.UUID
	PlayerID    uuid.UUID
	Level       int
	Seed        int64
	Ticks       uint64
	CompletedAt time.Time
}

// NewRunRecord creates a record with a fresh ID.
func NewRunRecord(config RunRecordConfig) (*RunRecord, error) {
	if config.Level < 1 {
		return nil, ErrInvalidLevel
	}

	return &RunRecord{
		ID:          uuid.New(),
		RunID:       config.RunID,
		PlayerID:    config.PlayerID,
		Level:       config.Level,
		Seed:        config.Seed,
		Ticks:       config.Ticks,
		CompletedAt: config.CompletedAt,
	}, nil
}
