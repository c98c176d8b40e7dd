package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type deviceRecord struct {
	ID                string  `gorm:"primaryKey;size:36"`
	UserID            string  `gorm:"size:64;not null;index"`
	DeviceID          string  `gorm:"size:255;not null"`
	Platform          string  `gorm:"size:32"`
	Model             string  `gorm:"size:255"`
	Manufacturer      string  `gorm:"size:255"`
	AppVersion        string  `gorm:"size:64"`
	NotificationToken *string `gorm:"size:512"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (deviceRecord) TableName() string {
	return "user_devices"
}

func (d *deviceRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) domain.DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) ListNotifiable(ctx context.Context, userID string) ([]*domain.UserDevice, error) {
	var records []deviceRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("notification_token IS NOT NULL AND notification_token <> ?", "").
		Order("created_at").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	devices := make([]*domain.UserDevice, 0, len(records))
	for i := range records {
		device := records[i].toDomain()
		if !device.HasToken() {
			continue
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// Register updates the device matching the user, device id and hardware
// identity, or creates it when none exists.
func (r *deviceRepository) Register(ctx context.Context, device *domain.UserDevice) (*domain.UserDevice, error) {
	var saved deviceRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(map[string]any{
			"user_id":      device.UserID,
			"device_id":    device.DeviceID,
			"platform":     device.Platform,
			"model":        device.Model,
			"manufacturer": device.Manufacturer,
		}).First(&saved).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = *toDeviceRecord(device)
			saved.ID = ""
			return tx.Create(&saved).Error
		case err != nil:
			return err
		}

		return tx.Model(&saved).Updates(map[string]any{
			"app_version":        device.AppVersion,
			"notification_token": device.NotificationToken,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}

	saved.AppVersion = device.AppVersion
	saved.NotificationToken = device.NotificationToken
	return saved.toDomain(), nil
}

func toDeviceRecord(d *domain.UserDevice) *deviceRecord {
	return &deviceRecord{
		ID:                d.ID,
		UserID:            d.UserID,
		DeviceID:          d.DeviceID,
		Platform:          d.Platform,
		Model:             d.Model,
		Manufacturer:      d.Manufacturer,
		AppVersion:        d.AppVersion,
		NotificationToken: d.NotificationToken,
	}
}

func (d *deviceRecord) toDomain() *domain.UserDevice {
	return &domain.UserDevice{
		ID:                d.ID,
		UserID:            d.UserID,
		DeviceID:          d.DeviceID,
		Platform:          d.Platform,
		Model:             d.Model,
		Manufacturer:      d.Manufacturer,
		AppVersion:        d.AppVersion,
		NotificationToken: d.NotificationToken,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
