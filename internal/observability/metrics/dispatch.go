package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	dispatchMeterName = "dispatch.service"
)

type DispatchMetrics struct {
	ticks         metric.Int64Counter
	tasksSelected metric.Int64Counter
	sends         metric.Int64Counter
	advances      metric.Int64Counter
	tickDuration  metric.Float64Histogram
	sendDuration  metric.Float64Histogram
}

func NewDispatchMetrics() (*DispatchMetrics, error) {
	meter := otel.Meter(dispatchMeterName)

	ticks, err := meter.Int64Counter(
		"dispatch_ticks_total",
		metric.WithDescription("Total number of dispatch ticks"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	tasksSelected, err := meter.Int64Counter(
		"dispatch_tasks_selected_total",
		metric.WithDescription("Total number of due tasks selected"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	sends, err := meter.Int64Counter(
		"dispatch_notifications_total",
		metric.WithDescription("Total number of notification sends"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	advances, err := meter.Int64Counter(
		"dispatch_advances_total",
		metric.WithDescription("Total number of schedule advancement attempts"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	tickDuration, err := meter.Float64Histogram(
		"dispatch_tick_duration_seconds",
		metric.WithDescription("Dispatch tick duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	sendDuration, err := meter.Float64Histogram(
		"dispatch_send_duration_seconds",
		metric.WithDescription("Single notification send duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		ticks:         ticks,
		tasksSelected: tasksSelected,
		sends:         sends,
		advances:      advances,
		tickDuration:  tickDuration,
		sendDuration:  sendDuration,
	}, nil
}

// RecordTick counts a tick by outcome: "completed", "skipped" or "failed".
func (m *DispatchMetrics) RecordTick(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ticks.Add(ctx, 1, attrs)
	m.tickDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *DispatchMetrics) RecordTasksSelected(ctx context.Context, count int) {
	m.tasksSelected.Add(ctx, int64(count))
}

func (m *DispatchMetrics) RecordSend(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.sends.Add(ctx, 1, attrs)
	m.sendDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAdvance counts an advancement by period type and outcome: "advanced",
// "retired", "conflict" or "failed".
func (m *DispatchMetrics) RecordAdvance(ctx context.Context, periodType, outcome string) {
	m.advances.Add(ctx, 1, metric.WithAttributes(
		attribute.String("period_type", periodType),
		attribute.String("outcome", outcome),
	))
}
