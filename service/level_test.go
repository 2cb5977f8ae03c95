package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelService(t *testing.T) {
	store := newFakeLevelStore()
	ls, err := NewLevelService(store, nopLogger{}, &LevelOptions{MaxDimension: 51, Seeds: NewSeedSource(1)})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("generate with seed", func(t *testing.T) {
		seed := int64(42)
		level, id, err := ls.Generate(ctx, 20, 20, &seed)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, int64(42), level.Seed)
		assert.Equal(t, 21, level.Grid.Width())

		stored, err := ls.ByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, level.Snapshot(), *stored)

		again, _, err := ls.Generate(ctx, 20, 20, &seed)
		require.NoError(t, err)
		assert.Equal(t, level.Grid.Rows(), again.Grid.Rows())
	})

	t.Run("generate with drawn seed", func(t *testing.T) {
		a, _, err := ls.Generate(ctx, 9, 9, nil)
		require.NoError(t, err)
		b, _, err := ls.Generate(ctx, 9, 9, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.Seed, b.Seed)
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		_, _, err := ls.Generate(ctx, 0, 9, nil)
		assert.ErrorIs(t, err, ErrInvalidDimensions)

		_, _, err = ls.Generate(ctx, 9, 52, nil)
		assert.ErrorIs(t, err, ErrLevelTooLarge)
	})

	t.Run("store failure", func(t *testing.T) {
		store.saveErr = errFake
		defer func() { store.saveErr = nil }()

		_, _, err := ls.Generate(ctx, 9, 9, nil)
		assert.ErrorIs(t, err, errFake)
	})
}

func TestSeedSourceIsDeterministic(t *testing.T) {
	a := NewSeedSource(9)
	b := NewSeedSource(9)
	for n := 0; n < 5; n++ {
		assert.Equal(t, a(), b())
	}
}
