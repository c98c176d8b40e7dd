package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

// localLayout stores the owner-local wall clock without a zone.
const localLayout = "2006-01-02 15:04:05"

type taskRecord struct {
	ID                 string `gorm:"primaryKey;size:36"`
	OwnerID            string `gorm:"size:64;not null;index"`
	Name               string `gorm:"not null"`
	Description        string
	IsActive           bool   `gorm:"not null"`
	MustBeCompleted    bool   `gorm:"not null"`
	PeriodType         int    `gorm:"not null"`
	PeriodTime         string `gorm:"size:5"`
	PeriodHasTime      bool
	WeekDays           []int  `gorm:"type:text;serializer:json"`
	MonthDays          []int  `gorm:"type:text;serializer:json"`
	Months             []int  `gorm:"type:text;serializer:json"`
	Timezone           string `gorm:"size:64;not null"`
	StartDateTime      *time.Time
	StopDateTime       *time.Time
	NextRunDateTime    *string    `gorm:"size:19"`
	NextRunDateTimeUtc *time.Time `gorm:"index"`
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) domain.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	rec := toTaskRecord(task)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	task.CreatedAt = rec.CreatedAt
	task.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	rec := toTaskRecord(task)
	res := r.db.WithContext(ctx).
		Model(&taskRecord{ID: task.ID}).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("save task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return rec.toDomain()
}

func (r *taskRepository) FindDue(ctx context.Context, query domain.DueQuery) ([]*domain.Task, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_run_date_time_utc IS NOT NULL AND next_run_date_time_utc < ?", query.BucketEnd().UTC())

	// Overdue must-be-completed tasks only keep firing when renotification is on.
	if !query.IncludeOverdueMustComplete {
		q = q.Where("(next_run_date_time_utc >= ? OR must_be_completed = ?)", query.Bucket.UTC(), false)
	}

	var records []taskRecord
	if err := q.Order("next_run_date_time_utc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find due tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		task, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *taskRepository) Advance(ctx context.Context, id string, expectedUtc time.Time, next *domain.NextRun) error {
	updates := map[string]any{}
	if next == nil {
		updates["is_active"] = false
	} else {
		updates["next_run_date_time"] = next.Local.Format(localLayout)
		updates["next_run_date_time_utc"] = next.UTC.UTC()
	}

	res := r.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ? AND is_active = ? AND next_run_date_time_utc = ?", id, true, expectedUtc.UTC()).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("advance task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAdvanceConflict
	}
	return nil
}

func (r *taskRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func toTaskRecord(t *domain.Task) *taskRecord {
	rec := &taskRecord{
		ID:                 t.ID,
		OwnerID:            t.OwnerID,
		Name:               t.Name,
		Description:        t.Description,
		IsActive:           t.IsActive,
		MustBeCompleted:    t.MustBeCompleted,
		PeriodType:         int(t.Period.Type),
		PeriodTime:         t.Period.Time.String(),
		PeriodHasTime:      t.Period.HasTime,
		WeekDays:           t.Period.WeekDays,
		MonthDays:          t.Period.MonthDays,
		Months:             t.Period.Months,
		Timezone:           t.Timezone,
		StartDateTime:      utcPtr(t.StartDateTime),
		StopDateTime:       utcPtr(t.StopDateTime),
		NextRunDateTimeUtc: utcPtr(t.NextRunDateTimeUtc),
		CompletedAt:        utcPtr(t.CompletedAt),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if rec.Timezone == "" {
		rec.Timezone = domain.DefaultTimezone
	}
	if t.NextRunDateTime != nil {
		local := t.NextRunDateTime.Format(localLayout)
		rec.NextRunDateTime = &local
	}
	return rec
}

func (rec *taskRecord) toDomain() (*domain.Task, error) {
	period := domain.Period{
		Type:      domain.PeriodType(rec.PeriodType),
		HasTime:   rec.PeriodHasTime,
		WeekDays:  rec.WeekDays,
		MonthDays: rec.MonthDays,
		Months:    rec.Months,
	}
	if rec.PeriodTime != "" {
		tod, err := domain.ParseTimeOfDay(rec.PeriodTime)
		if err != nil {
			return nil, fmt.Errorf("%w: task %s: %w", ErrInvalidTaskData, rec.ID, err)
		}
		period.Time = tod
	}

	task := &domain.Task{
		ID:                 rec.ID,
		OwnerID:            rec.OwnerID,
		Name:               rec.Name,
		Description:        rec.Description,
		IsActive:           rec.IsActive,
		MustBeCompleted:    rec.MustBeCompleted,
		Period:             period,
		Timezone:           rec.Timezone,
		StartDateTime:      utcPtr(rec.StartDateTime),
		StopDateTime:       utcPtr(rec.StopDateTime),
		NextRunDateTimeUtc: utcPtr(rec.NextRunDateTimeUtc),
		CompletedAt:        utcPtr(rec.CompletedAt),
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}

	if rec.NextRunDateTime != nil {
		local, err := time.ParseInLocation(localLayout, *rec.NextRunDateTime, task.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: task %s: %w", ErrInvalidTaskData, rec.ID, err)
		}
		task.NextRunDateTime = &local
	}

	return task, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
