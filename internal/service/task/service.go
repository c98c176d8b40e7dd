package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type Service struct {
	taskRepo   domain.TaskRepository
	calculator domain.NextRunCalculator
}

func NewService(taskRepo domain.TaskRepository, calculator domain.NextRunCalculator) *Service {
	return &Service{
		taskRepo:   taskRepo,
		calculator: calculator,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput, now time.Time) (*domain.Task, error) {
	task, err := domain.NewTask(domain.NewTaskParams{
		OwnerID:         in.OwnerID,
		Name:            in.Name,
		Description:     in.Description,
		MustBeCompleted: in.MustBeCompleted,
		Period:          in.Period,
		Timezone:        in.Timezone,
		StartDateTime:   in.StartDateTime,
		StopDateTime:    in.StopDateTime,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := in.Period.Validate(in.StartDateTime); err != nil {
		return nil, err
	}

	s.schedule(task, now)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	slog.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID),
		slog.String("owner_id", task.OwnerID),
		slog.String("period_type", task.Period.Type.String()),
		slog.Bool("scheduled", task.NextRunDateTimeUtc != nil),
	)

	return task, nil
}

func (s *Service) Update(ctx context.Context, id, ownerID string, in UpdateInput, now time.Time) (*domain.Task, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrNameRequired
	}
	if err := in.Period.Validate(in.StartDateTime); err != nil {
		return nil, err
	}
	tz := in.Timezone
	if tz == "" {
		tz = domain.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, domain.ErrInvalidTimezone
	}
	if in.StartDateTime != nil && in.StopDateTime != nil && !in.StopDateTime.After(*in.StartDateTime) {
		return nil, domain.ErrInvalidValidityRange
	}

	task.Name = in.Name
	task.Description = in.Description
	task.MustBeCompleted = in.MustBeCompleted
	task.Period = in.Period
	task.Timezone = tz
	task.StartDateTime = in.StartDateTime
	task.StopDateTime = in.StopDateTime
	task.UpdatedAt = now.UTC()

	if task.IsActive {
		s.schedule(task, now)
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Get returns the task when it belongs to ownerID.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Complete marks the task done and stops further notifications.
func (s *Service) Complete(ctx context.Context, id, ownerID string, now time.Time) (*domain.Task, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	completedAt := now.UTC()
	task.CompletedAt = &completedAt
	task.IsActive = false
	task.UpdatedAt = completedAt

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}

	slog.InfoContext(ctx, "task completed",
		slog.String("task_id", task.ID),
	)
	return task, nil
}

// SetActive toggles the task. Re-activation schedules from now so missed
// occurrences are not replayed.
func (s *Service) SetActive(ctx context.Context, id, ownerID string, active bool, now time.Time) (*domain.Task, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if active && !task.IsActive {
		task.CompletedAt = nil
		s.schedule(task, now)
	}
	task.IsActive = active
	task.UpdatedAt = now.UTC()

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("set task active: %w", err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.taskRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Service) schedule(task *domain.Task, now time.Time) {
	next, ok := s.calculator.Next(task, task.Location(), now, false)
	if !ok {
		task.SetNextRun(nil)
		return
	}
	task.SetNextRun(&next)
}
