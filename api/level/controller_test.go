package levelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	levels map[uuid.UUID]game.LevelSnapshot
}

func (g *fakeGenerator) Generate(_ context.Context, width, height int, seed *int64) (*game.Level, uuid.UUID, error) {
	if width < 1 || height < 1 {
		return nil, uuid.Nil, service.ErrInvalidDimensions
	}
	if width > 101 {
		return nil, uuid.Nil, service.ErrLevelTooLarge
	}
	s := int64(1)
	if seed != nil {
		s = *seed
	}
	level, err := game.NewLevel(1, width, height, s)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id := uuid.New()
	g.levels[id] = level.Snapshot()
	return level, id, nil
}

func (g *fakeGenerator) ByID(_ context.Context, id uuid.UUID) (*game.LevelSnapshot, error) {
	s, ok := g.levels[id]
	if !ok {
		return nil, errors.New("level not found")
	}
	return &s, nil
}

type fakeLeaderboard struct {
	standings []i.Standing
	lastN     int64
	err       error
}

func (l *fakeLeaderboard) Submit(context.Context, int, uuid.UUID, uint64) (bool, error) {
	return true, nil
}

func (l *fakeLeaderboard) Top(_ context.Context, _ int, n int64) ([]i.Standing, int64, error) {
	l.lastN = n
	if l.err != nil {
		return nil, 0, l.err
	}
	return l.standings, int64(len(l.standings)), nil
}

func newEngine(t *testing.T, g *fakeGenerator, l *fakeLeaderboard) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	lc, err := NewLevelController(g, l)
	require.NoError(t, err)
	engine := gin.New()
	lc.RegisterPublic(engine.Group("/v1"))
	return engine
}

func serve(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestNewLevelControllerNilDependency(t *testing.T) {
	_, err := NewLevelController(nil, &fakeLeaderboard{})
	assert.ErrorIs(t, err, service.ErrNilDependency)
}

func TestGenerateAndFetchLevel(t *testing.T) {
	g := &fakeGenerator{levels: map[uuid.UUID]game.LevelSnapshot{}}
	engine := newEngine(t, g, &fakeLeaderboard{})

	seed := int64(7)
	w := serve(engine, http.MethodPost, "/v1/levels", GenerateRequest{Width: 9, Height: 7, Seed: &seed})
	require.Equal(t, http.StatusCreated, w.Code)

	var created LevelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 9, created.Level.Width)
	assert.Equal(t, 7, created.Level.Height)
	assert.Equal(t, seed, created.Level.Seed)

	w = serve(engine, http.MethodGet, "/v1/levels/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched LevelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	t.Run("unknown level", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/v1/levels/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/v1/levels/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateRejectsBadDimensions(t *testing.T) {
	engine := newEngine(t, &fakeGenerator{levels: map[uuid.UUID]game.LevelSnapshot{}}, &fakeLeaderboard{})

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing height", body: map[string]int{"width": 5}},
		{name: "negative", body: GenerateRequest{Width: -3, Height: 5}},
		{name: "too large", body: GenerateRequest{Width: 500, Height: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, http.MethodPost, "/v1/levels", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLeaderboard(t *testing.T) {
	board := &fakeLeaderboard{standings: []i.Standing{
		{Rank: 1, PlayerID: uuid.New(), Ticks: 90},
		{Rank: 2, PlayerID: uuid.New(), Ticks: 140},
	}}
	engine := newEngine(t, &fakeGenerator{levels: map[uuid.UUID]game.LevelSnapshot{}}, board)

	w := serve(engine, http.MethodGet, "/v1/leaderboard/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Level)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, board.standings, resp.Standings)
	assert.Equal(t, int64(defaultLeaderboardLimit), board.lastN)

	w = serve(engine, http.MethodGet, "/v1/leaderboard/3?limit=50", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(50), board.lastN)

	for _, path := range []string{"/v1/leaderboard/0", "/v1/leaderboard/x", "/v1/leaderboard/1?limit=101"} {
		w := serve(engine, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	board.err = errors.New("redis down")
	w = serve(engine, http.MethodGet, "/v1/leaderboard/3", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
