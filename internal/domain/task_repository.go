package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=task_repository.go -destination=task_repository_mock.go -package=domain

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Save(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	FindDue(ctx context.Context, query DueQuery) ([]*Task, error)
	// Advance replaces the next-run fields only when the stored UTC value still
	// equals expectedUtc. A nil next retires the task. Returns ErrAdvanceConflict
	// when nothing matched.
	Advance(ctx context.Context, id string, expectedUtc time.Time, next *NextRun) error
	SoftDelete(ctx context.Context, id string) error
}
