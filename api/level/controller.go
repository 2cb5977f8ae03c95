package levelapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game/maze"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	storeTimeout            = 2 * time.Second
)

// LevelController serves level generation and leaderboards.
type LevelController struct {
	levels      i.LevelGenerator
	leaderboard i.Leaderboard
}

// NewLevelController initializes a LevelController.
func NewLevelController(levels i.LevelGenerator, leaderboard i.Leaderboard) (*LevelController, error) {
	if levels == nil || leaderboard == nil {
		return nil, service.ErrNilDependency
	}
	return &LevelController{
		levels:      levels,
		leaderboard: leaderboard,
	}, nil
}

// RegisterPublic registers public routes.
func (lc *LevelController) RegisterPublic(route *gin.RouterGroup) {
	levels := route.Group("/levels")
	{
		levels.POST("", lc.generate)
		levels.GET("/:ID", lc.byID)
	}
	route.GET("/leaderboard/:level", lc.top)
}

// RegisterProtected registers protected routes.
func (lc *LevelController) RegisterProtected(route *gin.RouterGroup) {}

// generate creates and stores a level.
func (lc *LevelController) generate(ctx *gin.Context) {
	var request GenerateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	level, id, err := lc.levels.Generate(timeoutCtx, request.Width, request.Height, request.Seed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDimensions),
			errors.Is(err, service.ErrLevelTooLarge),
			errors.Is(err, maze.ErrInvalidDimensions):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while generating level"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, &LevelResponse{ID: id.String(), Level: level.Snapshot()})
}

// byID returns a stored level.
func (lc *LevelController) byID(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	level, err := lc.levels.ByID(timeoutCtx, ID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "level not found"})
		return
	}

	ctx.JSON(http.StatusOK, &LevelResponse{ID: ID.String(), Level: *level})
}

// top returns the leaderboard of a level number.
func (lc *LevelController) top(ctx *gin.Context) {
	level, err := strconv.Atoi(ctx.Params.ByName("level"))
	if err != nil || level < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid level number"})
		return
	}

	limit := defaultLeaderboardLimit
	if raw := ctx.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLeaderboardLimit {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	standings, total, err := lc.leaderboard.Top(timeoutCtx, level, int64(limit))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
		return
	}

	ctx.JSON(http.StatusOK, &LeaderboardResponse{Level: level, Total: total, Standings: standings})
}
