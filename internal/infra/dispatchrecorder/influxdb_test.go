//go:build !gcloud

package dispatchrecorder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

func TestNewRecorderFallsBackToNoop(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "disabled", cfg: Config{Disabled: true, InfluxDBToken: "t", InfluxDBOrg: "o"}},
		{name: "missing token", cfg: Config{InfluxDBOrg: "o"}},
		{name: "missing org", cfg: Config{InfluxDBToken: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewRecorder(context.Background(), &tt.cfg)
			if err != nil {
				t.Fatalf("NewRecorder() error = %v", err)
			}
			if _, ok := rec.(*noopRecorder); !ok {
				t.Errorf("NewRecorder() = %T, want *noopRecorder", rec)
			}
		})
	}
}

func TestTickPoint(t *testing.T) {
	bucket := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	at := bucket.Add(5 * time.Second)

	point := tickPoint(domain.TickResultRecord{
		RunID:         "run-1",
		Bucket:        bucket,
		SelectedCount: 3,
		NotifiedCount: 5,
		AdvancedCount: 2,
		Duration:      1500 * time.Millisecond,
	}, at)

	line := write.PointToLineProtocol(point, time.Nanosecond)

	for _, want := range []string{
		"dispatch_tick,",
		"run_id=run-1",
		"selected_count=3i",
		"notified_count=5i",
		"advanced_count=2i",
		"duration_ms=1500i",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol %q missing %q", line, want)
		}
	}
}
