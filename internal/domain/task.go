package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTimezone = "UTC"

// Task is a recurring or one-shot reminder owned by a single user.
type Task struct {
	ID              string
	OwnerID         string
	Name            string
	Description     string
	IsActive        bool
	MustBeCompleted bool
	Period          Period
	Timezone        string
	StartDateTime   *time.Time
	StopDateTime    *time.Time

	// NextRunDateTime is the owner-local wall clock of the next occurrence and
	// NextRunDateTimeUtc its UTC projection. Dispatch only compares the UTC value.
	NextRunDateTime    *time.Time
	NextRunDateTimeUtc *time.Time

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewTaskParams struct {
	OwnerID         string
	Name            string
	Description     string
	MustBeCompleted bool
	Period          Period
	Timezone        string
	StartDateTime   *time.Time
	StopDateTime    *time.Time
}

// NewTask builds an active task. The owner is mandatory.
func NewTask(p NewTaskParams, now time.Time) (*Task, error) {
	if strings.TrimSpace(p.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, ErrNameRequired
	}

	tz := p.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, ErrInvalidTimezone
	}

	if p.StartDateTime != nil && p.StopDateTime != nil && !p.StopDateTime.After(*p.StartDateTime) {
		return nil, ErrInvalidValidityRange
	}

	return &Task{
		ID:              uuid.NewString(),
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		Description:     p.Description,
		IsActive:        true,
		MustBeCompleted: p.MustBeCompleted,
		Period:          p.Period,
		Timezone:        tz,
		StartDateTime:   p.StartDateTime,
		StopDateTime:    p.StopDateTime,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// Location resolves the owner's zone, falling back to UTC for unknown names.
func (t *Task) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetNextRun replaces the cached next occurrence. A nil run clears it.
func (t *Task) SetNextRun(run *NextRun) {
	if run == nil {
		t.NextRunDateTime = nil
		t.NextRunDateTimeUtc = nil
		return
	}
	local, utc := run.Local, run.UTC
	t.NextRunDateTime = &local
	t.NextRunDateTimeUtc = &utc
}

// NextRun is one computed occurrence.
type NextRun struct {
	Local time.Time
	UTC   time.Time
}

func NewNextRun(local time.Time) NextRun {
	return NextRun{Local: local, UTC: local.UTC()}
}

// DueQuery selects tasks due in the minute bucket starting at Bucket.
type DueQuery struct {
	Bucket time.Time
	// IncludeOverdueMustComplete also selects overdue must-be-completed tasks so
	// they keep notifying until the owner completes them.
	IncludeOverdueMustComplete bool
}

func (q DueQuery) BucketEnd() time.Time {
	return q.Bucket.Add(time.Minute)
}

// IsDue evaluates the selection predicate in memory.
func (q DueQuery) IsDue(t *Task) bool {
	if !t.IsActive || t.NextRunDateTimeUtc == nil {
		return false
	}
	next := *t.NextRunDateTimeUtc
	if !next.Before(q.BucketEnd()) {
		return false
	}
	if !next.Before(q.Bucket) {
		return true
	}
	return !t.MustBeCompleted || q.IncludeOverdueMustComplete
}
