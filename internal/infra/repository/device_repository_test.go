package repository

import (
	"context"
	"testing"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
	"github.com/KasumiMercury/primind-task-dispatcher/internal/testutil"
)

func setupDeviceRepository(t *testing.T) domain.DeviceRepository {
	t.Helper()

	db := testutil.SetupSQLite(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewDeviceRepository(db)
}

func strPtr(s string) *string {
	return &s
}

func TestDeviceRepositoryRegisterUpserts(t *testing.T) {
	ctx := context.Background()
	repo := setupDeviceRepository(t)

	first, err := repo.Register(ctx, &domain.UserDevice{
		UserID:            "user-1",
		DeviceID:          "device-a",
		Platform:          "ios",
		Model:             "iPhone15,2",
		Manufacturer:      "Apple",
		AppVersion:        "1.0.0",
		NotificationToken: strPtr("ExponentPushToken[old]"),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("Register() did not assign an id")
	}

	second, err := repo.Register(ctx, &domain.UserDevice{
		UserID:            "user-1",
		DeviceID:          "device-a",
		Platform:          "ios",
		Model:             "iPhone15,2",
		Manufacturer:      "Apple",
		AppVersion:        "1.1.0",
		NotificationToken: strPtr("ExponentPushToken[new]"),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Register() created a new device %s, want update of %s", second.ID, first.ID)
	}

	devices, err := repo.ListNotifiable(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListNotifiable() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("ListNotifiable() returned %d devices, want 1", len(devices))
	}
	if devices[0].Token() != "ExponentPushToken[new]" || devices[0].AppVersion != "1.1.0" {
		t.Errorf("device not updated: %+v", devices[0])
	}
}

func TestDeviceRepositoryListNotifiable(t *testing.T) {
	ctx := context.Background()
	repo := setupDeviceRepository(t)

	register := func(userID, deviceID string, token *string) {
		t.Helper()
		if _, err := repo.Register(ctx, &domain.UserDevice{
			UserID:            userID,
			DeviceID:          deviceID,
			Platform:          "android",
			NotificationToken: token,
		}); err != nil {
			t.Fatalf("Register(%s) error = %v", deviceID, err)
		}
	}

	register("user-1", "with-token", strPtr("tok-1"))
	register("user-1", "nil-token", nil)
	register("user-1", "empty-token", strPtr(""))
	register("user-1", "blank-token", strPtr("   "))
	register("user-2", "other-user", strPtr("tok-2"))

	devices, err := repo.ListNotifiable(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListNotifiable() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("ListNotifiable() returned %d devices, want 1", len(devices))
	}
	if devices[0].DeviceID != "with-token" {
		t.Errorf("DeviceID = %s, want with-token", devices[0].DeviceID)
	}

	none, err := repo.ListNotifiable(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListNotifiable() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListNotifiable(nobody) returned %d devices", len(none))
	}
}
