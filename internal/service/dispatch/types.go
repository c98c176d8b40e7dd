package dispatch

import (
	"time"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

const (
	DefaultSendTimeout        = 10 * time.Second
	DefaultMaxConcurrentSends = 32
	DefaultTaskConcurrency    = 8
	DefaultLockTTL            = 55 * time.Second
)

type Options struct {
	SendTimeout        time.Duration
	MaxConcurrentSends int
	TaskConcurrency    int
	LockTTL            time.Duration
	// RenotifyUntilCompleted keeps selecting overdue must-be-completed tasks.
	RenotifyUntilCompleted bool
	AdvancePolicy          domain.AdvancePolicy
}

func (o Options) withDefaults() Options {
	if o.SendTimeout <= 0 {
		o.SendTimeout = DefaultSendTimeout
	}
	if o.MaxConcurrentSends <= 0 {
		o.MaxConcurrentSends = DefaultMaxConcurrentSends
	}
	if o.TaskConcurrency <= 0 {
		o.TaskConcurrency = DefaultTaskConcurrency
	}
	if o.LockTTL <= 0 {
		o.LockTTL = DefaultLockTTL
	}
	return o
}

type TickResult struct {
	RunID              string        `json:"run_id"`
	Bucket             time.Time     `json:"bucket"`
	Skipped            bool          `json:"skipped"`
	SelectedCount      int           `json:"selected_count"`
	ProcessedCount     int           `json:"processed_count"`
	LookupFailedCount  int           `json:"lookup_failed_count"`
	NotifiedCount      int           `json:"notified_count"`
	FailedSendCount    int           `json:"failed_send_count"`
	AdvancedCount      int           `json:"advanced_count"`
	RetiredCount       int           `json:"retired_count"`
	ConflictCount      int           `json:"conflict_count"`
	AdvanceFailedCount int           `json:"advance_failed_count"`
	Duration           time.Duration `json:"duration_ns"`
}

func (r *TickResult) record() domain.TickResultRecord {
	return domain.TickResultRecord{
		RunID:              r.RunID,
		Bucket:             r.Bucket,
		SelectedCount:      r.SelectedCount,
		ProcessedCount:     r.ProcessedCount,
		LookupFailedCount:  r.LookupFailedCount,
		NotifiedCount:      r.NotifiedCount,
		FailedSendCount:    r.FailedSendCount,
		AdvancedCount:      r.AdvancedCount,
		RetiredCount:       r.RetiredCount,
		ConflictCount:      r.ConflictCount,
		AdvanceFailedCount: r.AdvanceFailedCount,
		Duration:           r.Duration,
	}
}

type advanceOutcome string

const (
	advanceSkipped  advanceOutcome = "skipped"
	advanceAdvanced advanceOutcome = "advanced"
	advanceRetired  advanceOutcome = "retired"
	advanceConflict advanceOutcome = "conflict"
	advanceFailed   advanceOutcome = "failed"
)
