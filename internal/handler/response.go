package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

const userIDHeader = "X-User-ID"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: message})
}

var validationErrors = []error{
	domain.ErrOwnerRequired,
	domain.ErrNameRequired,
	domain.ErrInvalidPeriodType,
	domain.ErrInvalidTimeOfDay,
	domain.ErrEmptyWeekDays,
	domain.ErrEmptyMonthDays,
	domain.ErrEmptyMonths,
	domain.ErrImpossibleDate,
	domain.ErrMissingStart,
	domain.ErrInvalidTimezone,
	domain.ErrInvalidValidityRange,
}

// respondDomainError maps service errors to HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrTaskNotFound) {
		respondError(c, http.StatusNotFound, "not_found", err.Error())
		return
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			respondError(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
	}

	respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

// requireUser reads the caller identity set by the gateway.
func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", userIDHeader+" header is required")
		return "", false
	}
	return userID, true
}
