package domain

import "context"

//go:generate mockgen -source=notification_sender.go -destination=notification_sender_mock.go -package=domain

type NotificationSender interface {
	Send(ctx context.Context, notification Notification) error
}
