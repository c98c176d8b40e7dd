package config

import (
	"errors"
	"fmt"
)

// ValidateForRun checks every section needed to start the service.
func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Notifier.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notifier: %w", err))
	}

	return errors.Join(errs...)
}
