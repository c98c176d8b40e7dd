package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/service/dispatch"
)

type TickRunner interface {
	RunTick(ctx context.Context, now time.Time) (*dispatch.TickResult, error)
}

type DispatchHandler struct {
	runner TickRunner
	now    func() time.Time
}

func NewDispatchHandler(runner TickRunner) *DispatchHandler {
	return &DispatchHandler{
		runner: runner,
		now:    time.Now,
	}
}

// HandleDispatch runs one tick. The optional "at" query parameter replaces
// the clock reading, for external schedulers and replays.
func (h *DispatchHandler) HandleDispatch(c *gin.Context) {
	ctx := c.Request.Context()

	now := h.now()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid at time format, expected RFC3339")
			return
		}
		now = parsed
		slog.InfoContext(ctx, "using virtual time",
			slog.Time("virtual_now", now),
		)
	}

	result, err := h.runner.RunTick(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "dispatch tick failed",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "dispatch_error", "dispatch tick failed")
		return
	}

	c.JSON(http.StatusOK, result)
}
