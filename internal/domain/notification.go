package domain

import (
	"fmt"
	"time"
)

const (
	DefaultSound    = "default"
	DefaultPriority = "high"
	DefaultBadge    = 1
)

// Notification is one push request for one device.
type Notification struct {
	TaskID       string
	UserID       string
	DeviceID     string
	Token        string
	OccurrenceAt time.Time

	Title    string
	Body     string
	Data     map[string]string
	Sound    string
	Priority string
	Badge    int
}

// NewTaskNotification builds the push request for a task occurrence on a device.
func NewTaskNotification(task *Task, device *UserDevice) Notification {
	var occurrence time.Time
	if task.NextRunDateTimeUtc != nil {
		occurrence = *task.NextRunDateTimeUtc
	}
	return Notification{
		TaskID:       task.ID,
		UserID:       task.OwnerID,
		DeviceID:     device.ID,
		Token:        device.Token(),
		OccurrenceAt: occurrence,
		Title:        task.Name,
		Body:         task.Description,
		Data: map[string]string{
			"redirectTo": fmt.Sprintf("/tasks/%s", task.ID),
			"taskId":     task.ID,
		},
		Sound:    DefaultSound,
		Priority: DefaultPriority,
		Badge:    DefaultBadge,
	}
}
