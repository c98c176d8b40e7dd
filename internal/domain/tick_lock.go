package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=tick_lock.go -destination=tick_lock_mock.go -package=domain

// TickLock guarantees at most one dispatcher tick runs at a time.
type TickLock interface {
	// Acquire returns a release func when the lock was taken, or ok=false when
	// another holder owns it.
	Acquire(ctx context.Context, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
