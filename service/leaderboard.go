package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardPrefix = "labyrinth"
	leaderboardKeyFmt        = "%s:leaderboard:level_%d"
)

var ErrInvalidLevel = errors.New("level number must be positive")

var _ i.Leaderboard = &Leaderboard{}

// Leaderboard ranks players per level number by their fewest ticks.
type Leaderboard struct {
	sortedSet i.SortedSet
	logger    i.Logger
	prefix    string
}

// NewLeaderboard creates a Leaderboard on top of a sorted set.
func NewLeaderboard(sortedSet i.SortedSet, logger i.Logger, prefix string) (*Leaderboard, error) {
	if sortedSet == nil || logger == nil {
		return nil, ErrNilDependency
	}
	if prefix == "" {
		prefix = defaultLeaderboardPrefix
	}
	return &Leaderboard{
		sortedSet: sortedSet,
		logger:    logger,
		prefix:    prefix,
	}, nil
}

// Submit implements i.Leaderboard.
func (lb *Leaderboard) Submit(ctx context.Context, level int, playerID uuid.UUID, ticks uint64) (bool, error) {
	if level < 1 {
		return false, ErrInvalidLevel
	}

	improved, err := lb.sortedSet.AddIfLower(ctx, lb.key(level), playerID.String(), float64(ticks))
	if err != nil {
		return false, fmt.Errorf("submitting score: %w", err)
	}
	if improved {
		lb.logger.Info(fmt.Sprintf("New best for player %s on level %d: %d ticks", playerID, level, ticks))
	}
	return improved, nil
}

// Top implements i.Leaderboard.
func (lb *Leaderboard) Top(ctx context.Context, level int, n int64) ([]i.Standing, int64, error) {
	if level < 1 {
		return nil, 0, ErrInvalidLevel
	}

	members, err := lb.sortedSet.TopN(ctx, lb.key(level), n)
	if err != nil {
		return nil, 0, fmt.Errorf("reading leaderboard: %w", err)
	}

	total, err := lb.sortedSet.Count(ctx, lb.key(level))
	if err != nil {
		return nil, 0, fmt.Errorf("counting leaderboard: %w", err)
	}

	standings := make([]i.Standing, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m.Member)
		if err != nil {
			lb.logger.Warning(fmt.Sprintf("Skipping leaderboard member %q: %v", m.Member, err))
			continue
		}
		standings = append(standings, i.Standing{
			Rank:     len(standings) + 1,
			PlayerID: id,
			Ticks:    uint64(m.Score),
		})
	}
	return standings, total, nil
}

func (lb *Leaderboard) key(level int) string {
	return fmt.Sprintf(leaderboardKeyFmt, lb.prefix, level)
}
