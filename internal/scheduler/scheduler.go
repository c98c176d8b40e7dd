package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/service/dispatch"
)

type TickRunner interface {
	RunTick(ctx context.Context, now time.Time) (*dispatch.TickResult, error)
}

// Trigger runs dispatch ticks on a cron schedule. A tick that is still
// running when the next one fires causes that firing to be skipped.
type Trigger struct {
	cron   *cron.Cron
	job    cron.Job
	runner TickRunner
	now    func() time.Time

	mu  sync.Mutex
	ctx context.Context
}

func New(spec string, runner TickRunner) (*Trigger, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	t := &Trigger{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cronLogger{})),
		runner: runner,
		now:    time.Now,
		ctx:    context.Background(),
	}

	t.job = cron.NewChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	).Then(cron.FuncJob(t.run))
	t.cron.Schedule(schedule, t.job)

	return t, nil
}

// Start begins firing ticks. ctx is passed to every tick.
func (t *Trigger) Start(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	t.cron.Start()
	slog.Info("dispatch trigger started",
		slog.String("event", "scheduler.start"),
	)
}

// Stop stops firing and waits for a running tick to finish.
func (t *Trigger) Stop() {
	<-t.cron.Stop().Done()
	slog.Info("dispatch trigger stopped",
		slog.String("event", "scheduler.stop"),
	)
}

func (t *Trigger) run() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	result, err := t.runner.RunTick(ctx, t.now())
	if err != nil {
		slog.ErrorContext(ctx, "dispatch tick failed",
			slog.String("event", "scheduler.tick.fail"),
			slog.String("error", err.Error()),
		)
		return
	}

	if result.Skipped {
		slog.DebugContext(ctx, "dispatch tick skipped",
			slog.String("run_id", result.RunID),
		)
		return
	}

	slog.InfoContext(ctx, "dispatch tick finished",
		slog.String("run_id", result.RunID),
		slog.Int("selected", result.SelectedCount),
		slog.Int("notified", result.NotifiedCount),
		slog.Int("advanced", result.AdvancedCount),
		slog.Duration("duration", result.Duration),
	)
}

// cronLogger routes cron's logr-style output to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{slog.String("error", err.Error())}, keysAndValues...)
	slog.Error("cron: "+msg, args...)
}
