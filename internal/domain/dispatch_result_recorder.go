package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=dispatch_result_recorder.go -destination=dispatch_result_recorder_mock.go -package=domain

type TickResultRecord struct {
	RunID              string
	Bucket             time.Time
	SelectedCount      int
	ProcessedCount     int
	LookupFailedCount  int
	NotifiedCount      int
	FailedSendCount    int
	AdvancedCount      int
	RetiredCount       int
	ConflictCount      int
	AdvanceFailedCount int
	Duration           time.Duration
}

type DispatchResultRecorder interface {
	RecordTick(ctx context.Context, record TickResultRecord) error
	Close() error
}
