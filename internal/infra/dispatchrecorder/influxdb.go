//go:build !gcloud

package dispatchrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

const tickMeasurement = "dispatch_tick"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DispatchResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "dispatch result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, dispatch result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "dispatch result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
	}, nil
}

func (r *influxDBRecorder) RecordTick(ctx context.Context, record domain.TickResultRecord) error {
	if err := r.writeAPI.WritePoint(ctx, tickPoint(record, time.Now())); err != nil {
		return fmt.Errorf("write tick result to InfluxDB: %w", err)
	}
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

func tickPoint(record domain.TickResultRecord, at time.Time) *write.Point {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	return influxdb2.NewPoint(
		tickMeasurement,
		map[string]string{
			"run_id": runID,
			"bucket": record.Bucket.UTC().Format(time.RFC3339),
		},
		map[string]any{
			"selected_count":       record.SelectedCount,
			"processed_count":      record.ProcessedCount,
			"lookup_failed_count":  record.LookupFailedCount,
			"notified_count":       record.NotifiedCount,
			"failed_send_count":    record.FailedSendCount,
			"advanced_count":       record.AdvancedCount,
			"retired_count":        record.RetiredCount,
			"conflict_count":       record.ConflictCount,
			"advance_failed_count": record.AdvanceFailedCount,
			"duration_ms":          record.Duration.Milliseconds(),
			"bucket_unix":          record.Bucket.Unix(),
		},
		at,
	)
}
