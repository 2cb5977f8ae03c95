// Package levelapi serves level generation and leaderboards.
package levelapi

import (
	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
)

// GenerateRequest asks for a new level. A missing seed picks a random one.
type GenerateRequest struct {
	Width  int    `json:"width" binding:"required"`
	Height int    `json:"height" binding:"required"`
	Seed   *int64 `json:"seed"`
}

// LevelResponse describes a stored level.
type LevelResponse struct {
	ID    string             `json:"id"`
	Level game.LevelSnapshot `json:"level"`
}

// LeaderboardResponse lists the best results for a level number.
type LeaderboardResponse struct {
	Level     int          `json:"level"`
	Total     int64        `json:"total"`
	Standings []i.Standing `json:"standings"`
}
