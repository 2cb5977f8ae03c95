// Package runapi starts runs and streams them over websockets.
package runapi

import (
	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/game"
)

// StartRunResponse is returned when a run starts.
type StartRunResponse struct {
	RunID   string             `json:"run_id"`
	PlayURL string             `json:"play_url"`
	Level   game.LevelSnapshot `json:"level"`
}

// RecordsResponse lists the caller's finished levels.
type RecordsResponse struct {
	Records []*dmn.RunRecord `json:"records"`
}
