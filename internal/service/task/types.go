package task

import (
	"time"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type CreateInput struct {
	OwnerID         string
	Name            string
	Description     string
	MustBeCompleted bool
	Period          domain.Period
	Timezone        string
	StartDateTime   *time.Time
	StopDateTime    *time.Time
}

// UpdateInput replaces the editable fields of a task.
type UpdateInput struct {
	Name            string
	Description     string
	MustBeCompleted bool
	Period          domain.Period
	Timezone        string
	StartDateTime   *time.Time
	StopDateTime    *time.Time
}
