package domain

import "time"

// NextRunCalculator computes the next occurrence of a task after ref in loc.
// ok is false when the task has no further occurrence.
type NextRunCalculator interface {
	Next(task *Task, loc *time.Location, ref time.Time, force bool) (next NextRun, ok bool)
}
