//go:build gcloud

package dispatchrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt         time.Time `bigquery:"recorded_at"`
	RunID              string    `bigquery:"run_id"`
	Bucket             time.Time `bigquery:"bucket"`
	SelectedCount      int64     `bigquery:"selected_count"`
	ProcessedCount     int64     `bigquery:"processed_count"`
	LookupFailedCount  int64     `bigquery:"lookup_failed_count"`
	NotifiedCount      int64     `bigquery:"notified_count"`
	FailedSendCount    int64     `bigquery:"failed_send_count"`
	AdvancedCount      int64     `bigquery:"advanced_count"`
	RetiredCount       int64     `bigquery:"retired_count"`
	ConflictCount      int64     `bigquery:"conflict_count"`
	AdvanceFailedCount int64     `bigquery:"advance_failed_count"`
	DurationMillis     int64     `bigquery:"duration_ms"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DispatchResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "dispatch result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, dispatch result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, dispatch result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "dispatch result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
	}, nil
}

func (r *bigQueryRecorder) RecordTick(ctx context.Context, record domain.TickResultRecord) error {
	row := &bigQueryRecord{
		RecordedAt:         time.Now(),
		RunID:              record.RunID,
		Bucket:             record.Bucket,
		SelectedCount:      int64(record.SelectedCount),
		ProcessedCount:     int64(record.ProcessedCount),
		LookupFailedCount:  int64(record.LookupFailedCount),
		NotifiedCount:      int64(record.NotifiedCount),
		FailedSendCount:    int64(record.FailedSendCount),
		AdvancedCount:      int64(record.AdvancedCount),
		RetiredCount:       int64(record.RetiredCount),
		ConflictCount:      int64(record.ConflictCount),
		AdvanceFailedCount: int64(record.AdvanceFailedCount),
		DurationMillis:     record.Duration.Milliseconds(),
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("insert tick result to BigQuery: %w", err)
	}
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
