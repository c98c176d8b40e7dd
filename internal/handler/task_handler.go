package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/service/task"
)

type periodRequest struct {
	Type string `json:"type" binding:"required"`
	// Time is "HH:MM". Omitted for one-time tasks firing at their start instant.
	Time      string `json:"time"`
	WeekDays  []int  `json:"week_days"`
	MonthDays []int  `json:"month_days"`
	Months    []int  `json:"months"`
}

func (p periodRequest) toDomain() (domain.Period, error) {
	pt, err := domain.ParsePeriodType(p.Type)
	if err != nil {
		return domain.Period{}, err
	}

	period := domain.Period{
		Type:      pt,
		WeekDays:  p.WeekDays,
		MonthDays: p.MonthDays,
		Months:    p.Months,
	}
	if p.Time != "" {
		tod, err := domain.ParseTimeOfDay(p.Time)
		if err != nil {
			return domain.Period{}, err
		}
		period.Time = tod
		period.HasTime = true
	}

	return period, nil
}

type taskRequest struct {
	Name            string        `json:"name" binding:"required"`
	Description     string        `json:"description"`
	MustBeCompleted bool          `json:"must_be_completed"`
	Period          periodRequest `json:"period"`
	Timezone        string        `json:"timezone"`
	StartDateTime   *time.Time    `json:"start_date_time"`
	StopDateTime    *time.Time    `json:"stop_date_time"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type periodResponse struct {
	Type      string `json:"type"`
	Time      string `json:"time,omitempty"`
	WeekDays  []int  `json:"week_days,omitempty"`
	MonthDays []int  `json:"month_days,omitempty"`
	Months    []int  `json:"months,omitempty"`
}

type taskResponse struct {
	ID                 string         `json:"id"`
	OwnerID            string         `json:"owner_id"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	IsActive           bool           `json:"is_active"`
	MustBeCompleted    bool           `json:"must_be_completed"`
	Period             periodResponse `json:"period"`
	Timezone           string         `json:"timezone"`
	StartDateTime      *time.Time     `json:"start_date_time,omitempty"`
	StopDateTime       *time.Time     `json:"stop_date_time,omitempty"`
	NextRunDateTime    *string        `json:"next_run_date_time,omitempty"`
	NextRunDateTimeUtc *time.Time     `json:"next_run_date_time_utc,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// localLayout renders the owner's wall clock without an offset.
const localLayout = "2006-01-02T15:04:05"

func newTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		Name:            t.Name,
		Description:     t.Description,
		IsActive:        t.IsActive,
		MustBeCompleted: t.MustBeCompleted,
		Period: periodResponse{
			Type:      t.Period.Type.String(),
			WeekDays:  t.Period.WeekDays,
			MonthDays: t.Period.MonthDays,
			Months:    t.Period.Months,
		},
		Timezone:           t.Timezone,
		StartDateTime:      t.StartDateTime,
		StopDateTime:       t.StopDateTime,
		NextRunDateTimeUtc: t.NextRunDateTimeUtc,
		CompletedAt:        t.CompletedAt,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.Period.HasTime {
		resp.Period.Time = t.Period.Time.String()
	}
	if t.NextRunDateTime != nil {
		local := t.NextRunDateTime.Format(localLayout)
		resp.NextRunDateTime = &local
	}
	return resp
}

type TaskHandler struct {
	taskService *task.Service
	now         func() time.Time
}

func NewTaskHandler(taskService *task.Service) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		now:         time.Now,
	}
}

func (h *TaskHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/tasks", h.HandleCreate)
	rg.GET("/tasks/:id", h.HandleGet)
	rg.PUT("/tasks/:id", h.HandleUpdate)
	rg.DELETE("/tasks/:id", h.HandleDelete)
	rg.POST("/tasks/:id/complete", h.HandleComplete)
	rg.POST("/tasks/:id/active", h.HandleSetActive)
}

func bindTask(c *gin.Context) (taskRequest, domain.Period, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "request validation failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return req, domain.Period{}, false
	}

	period, err := req.Period.toDomain()
	if err != nil {
		respondDomainError(c, err)
		return req, domain.Period{}, false
	}

	return req, period, true
}

func (h *TaskHandler) HandleCreate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	req, period, ok := bindTask(c)
	if !ok {
		return
	}

	created, err := h.taskService.Create(c.Request.Context(), task.CreateInput{
		OwnerID:         userID,
		Name:            req.Name,
		Description:     req.Description,
		MustBeCompleted: req.MustBeCompleted,
		Period:          period,
		Timezone:        req.Timezone,
		StartDateTime:   req.StartDateTime,
		StopDateTime:    req.StopDateTime,
	}, h.now())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(created))
}

func (h *TaskHandler) HandleGet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	found, err := h.taskService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(found))
}

func (h *TaskHandler) HandleUpdate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	req, period, ok := bindTask(c)
	if !ok {
		return
	}

	updated, err := h.taskService.Update(c.Request.Context(), c.Param("id"), userID, task.UpdateInput{
		Name:            req.Name,
		Description:     req.Description,
		MustBeCompleted: req.MustBeCompleted,
		Period:          period,
		Timezone:        req.Timezone,
		StartDateTime:   req.StartDateTime,
		StopDateTime:    req.StopDateTime,
	}, h.now())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(updated))
}

func (h *TaskHandler) HandleDelete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) HandleComplete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	completed, err := h.taskService.Complete(c.Request.Context(), c.Param("id"), userID, h.now())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(completed))
}

func (h *TaskHandler) HandleSetActive(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	updated, err := h.taskService.SetActive(c.Request.Context(), c.Param("id"), userID, *req.Active, h.now())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(updated))
}
