package domain

import (
	"strings"
	"time"
)

type UserDevice struct {
	ID                string
	UserID            string
	DeviceID          string
	Platform          string
	Model             string
	Manufacturer      string
	AppVersion        string
	NotificationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasToken is false for devices that cannot receive pushes.
func (d *UserDevice) HasToken() bool {
	return d.NotificationToken != nil && strings.TrimSpace(*d.NotificationToken) != ""
}

func (d *UserDevice) Token() string {
	if d.NotificationToken == nil {
		return ""
	}
	return strings.TrimSpace(*d.NotificationToken)
}
