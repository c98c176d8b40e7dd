package domain

import "errors"

var (
	ErrOwnerRequired        = errors.New("task owner is required")
	ErrNameRequired         = errors.New("task name is required")
	ErrTaskNotFound         = errors.New("task not found")
	ErrAdvanceConflict      = errors.New("task schedule changed since it was read")
	ErrDeviceNotRegistered  = errors.New("device not registered with push provider")
	ErrInvalidPeriodType    = errors.New("invalid period type")
	ErrInvalidTimeOfDay     = errors.New("invalid time of day, expected HH:MM")
	ErrEmptyWeekDays        = errors.New("weekly period requires at least one weekday")
	ErrEmptyMonthDays       = errors.New("period requires at least one day of month")
	ErrEmptyMonths          = errors.New("yearly period requires at least one month")
	ErrImpossibleDate       = errors.New("period never matches a calendar date")
	ErrMissingStart         = errors.New("one-time period requires a start date")
	ErrInvalidTimezone      = errors.New("invalid timezone")
	ErrInvalidValidityRange = errors.New("stop date must be after start date")
)
