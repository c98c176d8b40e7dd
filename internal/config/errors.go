package config

import (
	"errors"
	"fmt"
)

var (
	ErrRedisAddrMissing        = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB          = errors.New("REDIS_DB must be a valid integer")
	ErrUnsupportedDBDriver     = errors.New("DB_DRIVER must be sqlite or postgres")
	ErrDBDSNMissing            = errors.New("DB_DSN is required")
	ErrInvalidCronSpec         = errors.New("DISPATCH_CRON_SPEC is not a valid cron expression")
	ErrInvalidManualPeriodType = errors.New("DISPATCH_MANUAL_PERIOD_TYPES contains an unknown period type")
	ErrNonPositiveConcurrency  = errors.New("dispatch concurrency limits must be positive")
	ErrNonPositiveDuration     = errors.New("dispatch timeouts must be positive")
	ErrInvalidExpoEndpoint     = errors.New("EXPO_PUSH_ENDPOINT must be an absolute http(s) URL")
	ErrNegativeExpoRate        = errors.New("EXPO_MAX_REQUESTS_PER_SECOND must not be negative")
	ErrCloudTasksFieldMissing  = errors.New("cloud tasks configuration is incomplete")
)

// EnvError reports an environment variable that could not be parsed.
type EnvError struct {
	Key   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}
