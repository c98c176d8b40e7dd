package repository

import "errors"

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidTaskData   = errors.New("invalid task data")
)
