package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/observability/tracing"
)

type Service struct {
	taskRepo        domain.TaskRepository
	deviceRepo      domain.DeviceRepository
	sender          domain.NotificationSender
	calculator      domain.NextRunCalculator
	tickLock        domain.TickLock
	resultRecorder  domain.DispatchResultRecorder
	dispatchMetrics *metrics.DispatchMetrics
	opts            Options
}

// NewService wires the dispatcher. tickLock, resultRecorder and dispatchMetrics
// are optional.
func NewService(
	taskRepo domain.TaskRepository,
	deviceRepo domain.DeviceRepository,
	sender domain.NotificationSender,
	calculator domain.NextRunCalculator,
	tickLock domain.TickLock,
	resultRecorder domain.DispatchResultRecorder,
	dispatchMetrics *metrics.DispatchMetrics,
	opts Options,
) *Service {
	return &Service{
		taskRepo:        taskRepo,
		deviceRepo:      deviceRepo,
		sender:          sender,
		calculator:      calculator,
		tickLock:        tickLock,
		resultRecorder:  resultRecorder,
		dispatchMetrics: dispatchMetrics,
		opts:            opts.withDefaults(),
	}
}

// RunTick processes every task due in the minute containing now. Per-task
// failures are logged and counted; only lock and selection failures are
// returned as errors.
func (s *Service) RunTick(ctx context.Context, now time.Time) (result *TickResult, err error) {
	started := time.Now()
	bucket := domain.MinuteBucket(now)
	result = &TickResult{
		RunID:  uuid.NewString(),
		Bucket: bucket,
	}

	ctx, span := tracing.StartTickSpan(ctx, result.RunID, bucket)
	defer func() {
		result.Duration = time.Since(started)
		tracing.RecordTickResult(span, result.SelectedCount, result.NotifiedCount,
			result.FailedSendCount, result.AdvancedCount, result.ConflictCount, err)
		s.recordTickMetrics(ctx, result, err)
	}()

	if s.tickLock != nil {
		release, acquired, lockErr := s.tickLock.Acquire(ctx, s.opts.LockTTL)
		if lockErr != nil {
			slog.ErrorContext(ctx, "failed to acquire tick lock",
				slog.String("event", "tick_lock_failed"),
				slog.String("run_id", result.RunID),
				slog.String("error", lockErr.Error()),
			)
			return result, fmt.Errorf("acquire tick lock: %w", lockErr)
		}
		if !acquired {
			slog.InfoContext(ctx, "tick skipped, lock held by another dispatcher",
				slog.String("run_id", result.RunID),
				slog.Time("bucket", bucket),
			)
			result.Skipped = true
			return result, nil
		}
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				slog.WarnContext(ctx, "failed to release tick lock",
					slog.String("event", "tick_lock_release_failed"),
					slog.String("run_id", result.RunID),
					slog.String("error", relErr.Error()),
				)
			}
		}()
	}

	tasks, err := s.taskRepo.FindDue(ctx, domain.DueQuery{
		Bucket:                     bucket,
		IncludeOverdueMustComplete: s.opts.RenotifyUntilCompleted,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to select due tasks",
			slog.String("event", "find_due_failed"),
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()),
		)
		return result, fmt.Errorf("find due tasks: %w", err)
	}

	result.SelectedCount = len(tasks)
	slog.DebugContext(ctx, "selected due tasks",
		slog.String("run_id", result.RunID),
		slog.Time("bucket", bucket),
		slog.Int("selected_count", len(tasks)),
	)

	counters := &tickCounters{result: result}
	sendSlots := semaphore.NewWeighted(int64(s.opts.MaxConcurrentSends))

	var g errgroup.Group
	g.SetLimit(s.opts.TaskConcurrency)
	for _, task := range tasks {
		g.Go(func() error {
			s.processTask(ctx, task, now, sendSlots, counters)
			return nil
		})
	}
	// processTask never returns an error
	_ = g.Wait()

	slog.InfoContext(ctx, "dispatch tick completed",
		slog.String("run_id", result.RunID),
		slog.Time("bucket", bucket),
		slog.Int("selected_count", result.SelectedCount),
		slog.Int("notified_count", result.NotifiedCount),
		slog.Int("failed_send_count", result.FailedSendCount),
		slog.Int("advanced_count", result.AdvancedCount),
		slog.Int("retired_count", result.RetiredCount),
		slog.Int("conflict_count", result.ConflictCount),
		slog.Duration("duration", time.Since(started)),
	)

	return result, nil
}

func (s *Service) processTask(
	ctx context.Context,
	task *domain.Task,
	now time.Time,
	sendSlots *semaphore.Weighted,
	counters *tickCounters,
) {
	ctx, span := tracing.StartTaskSpan(ctx, task.ID, task.Period.Type.String())

	devices, err := s.deviceRepo.ListNotifiable(ctx, task.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list devices, task left for next tick",
			slog.String("event", "device_lookup_failed"),
			slog.String("task_id", task.ID),
			slog.String("owner_id", task.OwnerID),
			slog.String("error", err.Error()),
		)
		counters.lookupFailed()
		tracing.EndWithError(span, err)
		return
	}

	var wg sync.WaitGroup
	for _, device := range devices {
		notification := domain.NewTaskNotification(task, device)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sendSlots.Acquire(ctx, 1); err != nil {
				counters.sent(err)
				return
			}
			defer sendSlots.Release(1)
			counters.sent(s.send(ctx, notification))
		}()
	}
	// Every send completes before the schedule moves.
	wg.Wait()
	counters.processed()

	outcome := s.advance(ctx, task, now)
	counters.advanced(outcome)
	if s.dispatchMetrics != nil && outcome != advanceSkipped {
		s.dispatchMetrics.RecordAdvance(ctx, task.Period.Type.String(), string(outcome))
	}

	tracing.EndWithError(span, nil)
}

func (s *Service) send(ctx context.Context, notification domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
	defer cancel()

	ctx, span := tracing.StartSendSpan(ctx, notification.TaskID, notification.DeviceID)
	started := time.Now()

	err := s.sender.Send(ctx, notification)

	outcome := "success"
	if err != nil {
		outcome = "failed"
		event := "notification_send_failed"
		if errors.Is(err, domain.ErrDeviceNotRegistered) {
			outcome = "device_not_registered"
			event = "device_not_registered"
		}
		slog.WarnContext(ctx, "failed to send notification",
			slog.String("event", event),
			slog.String("task_id", notification.TaskID),
			slog.String("device_id", notification.DeviceID),
			slog.String("error", err.Error()),
		)
	}
	if s.dispatchMetrics != nil {
		s.dispatchMetrics.RecordSend(ctx, outcome, time.Since(started))
	}

	tracing.EndWithError(span, err)
	return err
}

func (s *Service) advance(ctx context.Context, task *domain.Task, now time.Time) advanceOutcome {
	if task.MustBeCompleted {
		slog.DebugContext(ctx, "task awaits completion, schedule kept",
			slog.String("task_id", task.ID),
		)
		return advanceSkipped
	}
	if !s.opts.AdvancePolicy.Advances(task.Period.Type) {
		return advanceSkipped
	}
	if task.NextRunDateTimeUtc == nil {
		return advanceSkipped
	}

	expected := *task.NextRunDateTimeUtc

	var next *domain.NextRun
	if run, ok := s.calculator.Next(task, task.Location(), now, true); ok {
		next = &run
	}

	err := s.taskRepo.Advance(ctx, task.ID, expected, next)
	switch {
	case errors.Is(err, domain.ErrAdvanceConflict):
		slog.InfoContext(ctx, "task changed since selection, advance skipped",
			slog.String("event", "advance_conflict"),
			slog.String("task_id", task.ID),
			slog.Time("expected_next_run", expected),
		)
		return advanceConflict
	case err != nil:
		slog.ErrorContext(ctx, "failed to advance task",
			slog.String("event", "advance_failed"),
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
		return advanceFailed
	case next == nil:
		slog.InfoContext(ctx, "task has no further occurrence, retired",
			slog.String("task_id", task.ID),
		)
		return advanceRetired
	default:
		slog.DebugContext(ctx, "task advanced",
			slog.String("task_id", task.ID),
			slog.Time("next_run_utc", next.UTC),
		)
		return advanceAdvanced
	}
}

func (s *Service) recordTickMetrics(ctx context.Context, result *TickResult, err error) {
	if s.dispatchMetrics != nil {
		outcome := "completed"
		switch {
		case err != nil:
			outcome = "failed"
		case result.Skipped:
			outcome = "skipped"
		}
		s.dispatchMetrics.RecordTick(ctx, outcome, result.Duration)
		s.dispatchMetrics.RecordTasksSelected(ctx, result.SelectedCount)
	}

	if s.resultRecorder == nil || err != nil || result.Skipped {
		return
	}
	if recErr := s.resultRecorder.RecordTick(context.WithoutCancel(ctx), result.record()); recErr != nil {
		slog.WarnContext(ctx, "failed to record tick result",
			slog.String("event", "tick_record_failed"),
			slog.String("run_id", result.RunID),
			slog.String("error", recErr.Error()),
		)
	}
}

type tickCounters struct {
	mu     sync.Mutex
	result *TickResult
}

func (c *tickCounters) lookupFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.LookupFailedCount++
}

func (c *tickCounters) processed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.ProcessedCount++
}

func (c *tickCounters) sent(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.result.FailedSendCount++
		return
	}
	c.result.NotifiedCount++
}

func (c *tickCounters) advanced(outcome advanceOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch outcome {
	case advanceAdvanced:
		c.result.AdvancedCount++
	case advanceRetired:
		c.result.RetiredCount++
	case advanceConflict:
		c.result.ConflictCount++
	case advanceFailed:
		c.result.AdvanceFailedCount++
	}
}
