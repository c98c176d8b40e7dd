//go:build gcloud

package notifier

import (
	"regexp"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

func TestCloudTaskIDIsDeterministic(t *testing.T) {
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	n := domain.Notification{TaskID: "0b6c5e3a-1f3e-4d0c-9d55-2f1b7c0a9e11", Token: "tok", OccurrenceAt: at}

	first := CloudTaskID(n)
	if first != CloudTaskID(n) {
		t.Error("CloudTaskID() is not stable")
	}

	other := n
	other.Token = "tok-2"
	if CloudTaskID(other) == first {
		t.Error("different tokens produced the same id")
	}

	next := n
	next.OccurrenceAt = at.Add(24 * time.Hour)
	if CloudTaskID(next) == first {
		t.Error("different occurrences produced the same id")
	}

	// Cloud Tasks ids allow letters, digits, hyphens and underscores.
	if !regexp.MustCompile(`^[A-Za-z0-9_-]{1,500}$`).MatchString(first) {
		t.Errorf("CloudTaskID() = %q is not a valid task id", first)
	}
}
