package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dispatchTracerName = "github.com/KasumiMercury/primind-task-dispatcher/internal/service/dispatch"

func DispatchTracer() trace.Tracer {
	return otel.Tracer(dispatchTracerName)
}

func StartTickSpan(ctx context.Context, runID string, bucket time.Time) (context.Context, trace.Span) {
	return DispatchTracer().Start(ctx, "dispatch.tick",
		trace.WithAttributes(
			attribute.String("tick.run_id", runID),
			attribute.String("tick.bucket", bucket.Format(time.RFC3339)),
		),
	)
}

func StartTaskSpan(ctx context.Context, taskID, periodType string) (context.Context, trace.Span) {
	return DispatchTracer().Start(ctx, "dispatch.task",
		trace.WithAttributes(
			attribute.String("task_id", taskID),
			attribute.String("period_type", periodType),
		),
	)
}

func StartSendSpan(ctx context.Context, taskID, deviceID string) (context.Context, trace.Span) {
	return DispatchTracer().Start(ctx, "dispatch.send",
		trace.WithAttributes(
			attribute.String("task_id", taskID),
			attribute.String("device_id", deviceID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordTickResult(span trace.Span, selected, notified, failed, advanced, conflicts int, err error) {
	span.SetAttributes(
		attribute.Int("tick.selected_count", selected),
		attribute.Int("tick.notified_count", notified),
		attribute.Int("tick.failed_send_count", failed),
		attribute.Int("tick.advanced_count", advanced),
		attribute.Int("tick.conflict_count", conflicts),
	)
	EndWithError(span, err)
}

// EndWithError sets the span status from err and ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
