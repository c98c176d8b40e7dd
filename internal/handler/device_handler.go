package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type deviceRequest struct {
	DeviceID          string  `json:"device_id" binding:"required"`
	Platform          string  `json:"platform" binding:"required"`
	Model             string  `json:"model"`
	Manufacturer      string  `json:"manufacturer"`
	AppVersion        string  `json:"app_version"`
	NotificationToken *string `json:"notification_token"`
}

type deviceResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id"`
	Platform     string    `json:"platform"`
	Model        string    `json:"model,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	AppVersion   string    `json:"app_version,omitempty"`
	Notifiable   bool      `json:"notifiable"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DeviceHandler struct {
	deviceRepo domain.DeviceRepository
}

func NewDeviceHandler(deviceRepo domain.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{
		deviceRepo: deviceRepo,
	}
}

// HandleRegister creates the caller's device or refreshes its app version
// and notification token.
func (h *DeviceHandler) HandleRegister(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	device, err := h.deviceRepo.Register(ctx, &domain.UserDevice{
		UserID:            userID,
		DeviceID:          req.DeviceID,
		Platform:          req.Platform,
		Model:             req.Model,
		Manufacturer:      req.Manufacturer,
		AppVersion:        req.AppVersion,
		NotificationToken: req.NotificationToken,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to register device",
			slog.String("user_id", userID),
			slog.String("device_id", req.DeviceID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to register device")
		return
	}

	c.JSON(http.StatusOK, deviceResponse{
		ID:           device.ID,
		UserID:       device.UserID,
		DeviceID:     device.DeviceID,
		Platform:     device.Platform,
		Model:        device.Model,
		Manufacturer: device.Manufacturer,
		AppVersion:   device.AppVersion,
		Notifiable:   device.HasToken(),
		UpdatedAt:    device.UpdatedAt,
	})
}
