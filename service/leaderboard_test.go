package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	set := newFakeSortedSet()
	lb, err := NewLeaderboard(set, nopLogger{}, "")
	require.NoError(t, err)
	ctx := context.Background()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	improved, err := lb.Submit(ctx, 1, alice, 400)
	require.NoError(t, err)
	assert.True(t, improved)

	improved, err = lb.Submit(ctx, 1, alice, 500)
	require.NoError(t, err)
	assert.False(t, improved, "a slower time keeps the best")

	_, err = lb.Submit(ctx, 1, bob, 250)
	require.NoError(t, err)
	_, err = lb.Submit(ctx, 1, carol, 900)
	require.NoError(t, err)
	_, err = lb.Submit(ctx, 2, carol, 10)
	require.NoError(t, err)

	t.Run("top standings", func(t *testing.T) {
		top, total, err := lb.Top(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, top, 2)
		assert.Equal(t, 1, top[0].Rank)
		assert.Equal(t, bob, top[0].PlayerID)
		assert.Equal(t, uint64(250), top[0].Ticks)
		assert.Equal(t, 2, top[1].Rank)
		assert.Equal(t, alice, top[1].PlayerID)
	})

	t.Run("levels are separate", func(t *testing.T) {
		top, total, err := lb.Top(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, top, 1)
		assert.Equal(t, carol, top[0].PlayerID)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := lb.Submit(ctx, 0, alice, 1)
		assert.ErrorIs(t, err, ErrInvalidLevel)
		_, _, err = lb.Top(ctx, -1, 10)
		assert.ErrorIs(t, err, ErrInvalidLevel)
	})

	t.Run("malformed members are skipped", func(t *testing.T) {
		_, err := set.AddIfLower(ctx, lb.key(3), "not-a-uuid", 1)
		require.NoError(t, err)
		_, err = lb.Submit(ctx, 3, alice, 5)
		require.NoError(t, err)

		top, _, err := lb.Top(ctx, 3, 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, alice, top[0].PlayerID)
		assert.Equal(t, 1, top[0].Rank)
	})

	assert.Equal(t, "labyrinth:leaderboard:level_4", lb.key(4))
}
