package runapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/api/identity"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	startTimeout       = 2 * time.Second
	defaultRecordLimit = 20
	maxRecordLimit     = 200
)

// RunController starts runs, streams them and lists finished levels.
type RunController struct {
	runs     i.RunManager
	records  i.RunRepo
	logger   i.Logger
	upgrader websocket.Upgrader
}

// NewRunController initializes a RunController.
func NewRunController(runs i.RunManager, records i.RunRepo, logger i.Logger) (*RunController, error) {
	if runs == nil || records == nil || logger == nil {
		return nil, service.ErrNilDependency
	}
	return &RunController{
		runs:    runs,
		records: records,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}, nil
}

// RegisterPublic registers public routes.
func (rc *RunController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (rc *RunController) RegisterProtected(route *gin.RouterGroup) {
	runs := route.Group("/runs")
	{
		runs.POST("", rc.start)
		runs.GET("/:ID/play", rc.play)
		runs.DELETE("/:ID", rc.stop)
	}
	route.GET("/records", rc.listRecords)
}

// start creates a run for the caller.
func (rc *RunController) start(ctx *gin.Context) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing player"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	runID, level, err := rc.runs.StartRun(timeoutCtx, playerID)
	if err != nil {
		rc.logger.Error(fmt.Sprintf("Starting run for %s: %v", playerID, err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while starting run"})
		return
	}

	ctx.JSON(http.StatusCreated, &StartRunResponse{
		RunID:   runID.String(),
		PlayURL: fmt.Sprintf("%s/%s/play", ctx.FullPath(), runID),
		Level:   *level,
	})
}

// stop ends one of the caller's runs.
func (rc *RunController) stop(ctx *gin.Context) {
	runID, playerID, ok := rc.runParams(ctx)
	if !ok {
		return
	}

	if _, err := rc.runs.Attach(runID, playerID); err != nil {
		rc.writeRunError(ctx, err)
		return
	}
	if err := rc.runs.StopRun(runID); err != nil {
		rc.writeRunError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// play upgrades to a websocket and pipes the run's frames to the client and
// the client's actions to the run. Closing the socket stops the run.
func (rc *RunController) play(ctx *gin.Context) {
	runID, playerID, ok := rc.runParams(ctx)
	if !ok {
		return
	}

	channels, err := rc.runs.Attach(runID, playerID)
	if err != nil {
		rc.writeRunError(ctx, err)
		return
	}

	conn, err := rc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		rc.logger.Warning(fmt.Sprintf("Upgrade failed for run %s: %v", runID, err))
		return
	}
	defer conn.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if !channels.Submit(payload) {
				return
			}
		}
	}()

	defer func() {
		if err := rc.runs.StopRun(runID); err != nil && !errors.Is(err, service.ErrRunNotFound) {
			rc.logger.Warning(fmt.Sprintf("Stopping run %s: %v", runID, err))
		}
	}()

	states := channels.States()
	for {
		select {
		case <-readerDone:
			return
		case frame, open := <-states:
			if !open {
				rc.writeEnd(conn, channels.End())
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// writeEnd forwards the run summary and closes the socket normally.
func (rc *RunController) writeEnd(conn *websocket.Conn, end <-chan []byte) {
	if summary, ok := <-end; ok {
		_ = conn.WriteMessage(websocket.TextMessage, summary)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run ended"))
}

// listRecords returns the caller's finished levels.
func (rc *RunController) listRecords(ctx *gin.Context) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing player"})
		return
	}

	limit := defaultRecordLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecordLimit {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := rc.records.ByPlayer(playerID, int64(limit))
	if err != nil {
		rc.logger.Error(fmt.Sprintf("Reading records of %s: %v", playerID, err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading records"})
		return
	}

	ctx.JSON(http.StatusOK, &RecordsResponse{Records: records})
}

// runParams reads the run ID and the caller, answering the request itself on failure.
func (rc *RunController) runParams(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing player"})
		return uuid.Nil, uuid.Nil, false
	}

	runID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, uuid.Nil, false
	}
	return runID, playerID, true
}

func (rc *RunController) writeRunError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRunNotOwned):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}
