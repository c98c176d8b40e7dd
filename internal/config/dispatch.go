package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

const (
	cronSpecEnv           = "DISPATCH_CRON_SPEC"
	sendTimeoutEnv        = "DISPATCH_SEND_TIMEOUT"
	maxConcurrentSendsEnv = "DISPATCH_MAX_CONCURRENT_SENDS"
	taskConcurrencyEnv    = "DISPATCH_TASK_CONCURRENCY"
	lockTTLEnv            = "DISPATCH_LOCK_TTL"
	renotifyEnv           = "DISPATCH_RENOTIFY_UNTIL_COMPLETED"
	manualPeriodTypesEnv  = "DISPATCH_MANUAL_PERIOD_TYPES"

	defaultCronSpec           = "* * * * *"
	defaultSendTimeout        = 10 * time.Second
	defaultMaxConcurrentSends = 32
	defaultTaskConcurrency    = 8
	defaultLockTTL            = 55 * time.Second
	defaultRenotify           = true
)

type DispatchConfig struct {
	// CronSpec is empty when the in-process trigger is disabled.
	CronSpec               string
	SendTimeout            time.Duration
	MaxConcurrentSends     int
	TaskConcurrency        int
	LockTTL                time.Duration
	RenotifyUntilCompleted bool
	// ManualPeriodTypes are never advanced by the dispatcher.
	ManualPeriodTypes []domain.PeriodType
}

func LoadDispatchConfig() (*DispatchConfig, error) {
	// Set-but-empty disables the trigger, unset uses the default.
	cronSpec, ok := os.LookupEnv(cronSpecEnv)
	if !ok {
		cronSpec = defaultCronSpec
	}

	sendTimeout, err := durationFromEnv(sendTimeoutEnv, defaultSendTimeout)
	if err != nil {
		return nil, err
	}

	maxSends, err := intFromEnv(maxConcurrentSendsEnv, defaultMaxConcurrentSends)
	if err != nil {
		return nil, err
	}

	taskConcurrency, err := intFromEnv(taskConcurrencyEnv, defaultTaskConcurrency)
	if err != nil {
		return nil, err
	}

	lockTTL, err := durationFromEnv(lockTTLEnv, defaultLockTTL)
	if err != nil {
		return nil, err
	}

	renotify, err := boolFromEnv(renotifyEnv, defaultRenotify)
	if err != nil {
		return nil, err
	}

	manual, err := parsePeriodTypes(os.Getenv(manualPeriodTypesEnv))
	if err != nil {
		return nil, err
	}

	return &DispatchConfig{
		CronSpec:               strings.TrimSpace(cronSpec),
		SendTimeout:            sendTimeout,
		MaxConcurrentSends:     maxSends,
		TaskConcurrency:        taskConcurrency,
		LockTTL:                lockTTL,
		RenotifyUntilCompleted: renotify,
		ManualPeriodTypes:      manual,
	}, nil
}

func parsePeriodTypes(raw string) ([]domain.PeriodType, error) {
	var types []domain.PeriodType
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		pt, err := domain.ParsePeriodType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidManualPeriodType, name)
		}
		types = append(types, pt)
	}

	return types, nil
}

func (c *DispatchConfig) AdvancePolicy() domain.AdvancePolicy {
	return domain.NewAdvancePolicy(c.ManualPeriodTypes...)
}

func (c *DispatchConfig) Validate() error {
	var errs []error

	if c.CronSpec != "" {
		if _, err := cron.ParseStandard(c.CronSpec); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidCronSpec, err))
		}
	}
	if c.MaxConcurrentSends <= 0 || c.TaskConcurrency <= 0 {
		errs = append(errs, ErrNonPositiveConcurrency)
	}
	if c.SendTimeout <= 0 || c.LockTTL <= 0 {
		errs = append(errs, ErrNonPositiveDuration)
	}

	return errors.Join(errs...)
}
