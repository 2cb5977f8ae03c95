// Package jsonencoder implements game.Encoder with JSON frames.
package jsonencoder

import (
	"encoding/json"
	"errors"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
)

// Frame types sent to clients.
const (
	FrameTick  = "tick"
	FrameLevel = "level"
	FrameEnd   = "end"
)

var ErrUnknownAction = errors.New("unknown action type")

var _ game.Encoder = &JSON{}

// JSON encodes run traffic as JSON objects tagged with a "type" field.
type JSON struct{}

// TickFrame is a simulation step as seen by clients.
type TickFrame struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
	motion.TickResult
}

// LevelFrame announces the level being played.
type LevelFrame struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Level   game.LevelSnapshot `json:"level"`
}

// EndFrame carries the run summary.
type EndFrame struct {
	Type string `json:"type"`
	game.Summary
}

// MarshalAction implements game.Encoder.
func (j *JSON) MarshalAction(a game.Action) ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalAction implements game.Encoder.
func (j *JSON) UnmarshalAction(b []byte) (game.Action, error) {
	var a game.Action
	if err := json.Unmarshal(b, &a); err != nil {
		return game.Action{}, err
	}

	switch a.Type {
	case "":
		a.Type = game.ActionMove
	case game.ActionMove, game.ActionLevel:
	default:
		return game.Action{}, ErrUnknownAction
	}
	return a, nil
}

// MarshalTick implements game.Encoder.
func (j *JSON) MarshalTick(level int, result motion.TickResult) ([]byte, error) {
	return json.Marshal(TickFrame{Type: FrameTick, Level: level, TickResult: result})
}

// MarshalLevel implements game.Encoder.
func (j *JSON) MarshalLevel(snapshot game.LevelSnapshot, message string) ([]byte, error) {
	return json.Marshal(LevelFrame{Type: FrameLevel, Message: message, Level: snapshot})
}

// MarshalEnd implements game.Encoder.
func (j *JSON) MarshalEnd(s game.Summary) ([]byte, error) {
	return json.Marshal(EndFrame{Type: FrameEnd, Summary: s})
}
