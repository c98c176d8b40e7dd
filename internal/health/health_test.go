package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}

func TestChecker_ReadyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantStatus Status
	}{
		{"database up", fakePinger{}, http.StatusOK, StatusHealthy},
		{"database down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, StatusUnhealthy},
		{"no dependencies", nil, http.StatusOK, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(nil, tt.db, "v1.0.0")

			r := gin.New()
			r.GET("/health/ready", checker.ReadyHandler())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", w.Code, tt.wantCode)
			}

			var body HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Version != "v1.0.0" {
				t.Errorf("version = %q", body.Version)
			}
			if tt.db != nil {
				if _, ok := body.Checks["database"]; !ok {
					t.Error("database check missing")
				}
			}
		})
	}
}

func TestChecker_LiveHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checker := NewChecker(nil, fakePinger{err: errors.New("down")}, "dev")
	r := gin.New()
	r.GET("/health/live", checker.LiveHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
}
