package domain

import "context"

//go:generate mockgen -source=device_repository.go -destination=device_repository_mock.go -package=domain

type DeviceRepository interface {
	// ListNotifiable returns the user's devices that carry a notification token.
	ListNotifiable(ctx context.Context, userID string) ([]*UserDevice, error)
	Register(ctx context.Context, device *UserDevice) (*UserDevice, error)
}
