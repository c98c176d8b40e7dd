package stub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const deviceNotRegistered = "DeviceNotRegistered"

// Handler emulates the Expo push endpoint for load runs.
type Handler struct {
	storage *PushStorage
	now     func() time.Time
}

func NewHandler(storage *PushStorage) *Handler {
	return &Handler{storage: storage, now: time.Now}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/--/api/v2/push/send", h.HandlePush)
	r.POST("/api/v1/reset", h.HandleReset)
	r.POST("/api/v1/unregister", h.HandleUnregister)
	r.GET("/api/v1/stats", h.HandleStats)
}

func (h *Handler) HandleReset(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	h.storage.Reset(runID)

	slog.Info("reset data", slog.String("run_id", runID))

	c.JSON(http.StatusOK, gin.H{
		"status": "reset complete",
		"run_id": runID,
	})
}

// HandleUnregister makes pushes to the given tokens fail with
// DeviceNotRegistered.
func (h *Handler) HandleUnregister(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	var req UnregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.storage.Unregister(runID, req.Tokens...)

	slog.Info("unregistered tokens",
		slog.String("run_id", runID),
		slog.Int("token_count", len(req.Tokens)),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":      "unregistered",
		"run_id":      runID,
		"token_count": len(req.Tokens),
	})
}

// POST /--/api/v2/push/send?run_id=...
func (h *Handler) HandlePush(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"code": "VALIDATION_ERROR", "message": err.Error()},
		}})
		return
	}

	ticketID, ok := h.storage.Record(runID, h.now(), req.Data["taskId"], req.To)
	if !ok {
		c.JSON(http.StatusOK, pushResponse{Data: pushTicket{
			Status:  "error",
			Message: req.To + " is not a registered push notification recipient",
			Details: ticketDetails{Error: deviceNotRegistered},
		}})
		return
	}

	slog.Debug("push accepted",
		slog.String("run_id", runID),
		slog.String("task_id", req.Data["taskId"]),
		slog.String("ticket_id", ticketID),
	)

	c.JSON(http.StatusOK, pushResponse{Data: pushTicket{Status: "ok", ID: ticketID}})
}

// GET /api/v1/stats?run_id=...
func (h *Handler) HandleStats(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")
	c.JSON(http.StatusOK, h.storage.Stats(runID))
}
