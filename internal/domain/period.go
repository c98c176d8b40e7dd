package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// PeriodType identifies how a task repeats. Values match the stored ordinals.
type PeriodType int

const (
	PeriodOnce PeriodType = iota + 1
	PeriodDaily
	PeriodWeekly
	PeriodMonthly
	PeriodYearly
)

var periodTypeNames = map[PeriodType]string{
	PeriodOnce:    "Once",
	PeriodDaily:   "Daily",
	PeriodWeekly:  "Weekly",
	PeriodMonthly: "Monthly",
	PeriodYearly:  "Yearly",
}

func (p PeriodType) String() string {
	if name, ok := periodTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PeriodType(%d)", int(p))
}

func (p PeriodType) IsValid() bool {
	_, ok := periodTypeNames[p]
	return ok
}

// AdvancesAutomatically reports whether the dispatcher moves the schedule forward
// after firing. Every built-in type does; deployments can opt types out through
// an AdvancePolicy.
func (p PeriodType) AdvancesAutomatically() bool {
	return p.IsValid()
}

// ParsePeriodType accepts the case-insensitive type name.
func ParsePeriodType(name string) (PeriodType, error) {
	for p, n := range periodTypeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPeriodType, name)
}

// AdvancePolicy decides which period types the dispatcher advances after firing.
type AdvancePolicy struct {
	manual map[PeriodType]struct{}
}

func NewAdvancePolicy(manual ...PeriodType) AdvancePolicy {
	m := make(map[PeriodType]struct{}, len(manual))
	for _, p := range manual {
		m[p] = struct{}{}
	}
	return AdvancePolicy{manual: m}
}

func (a AdvancePolicy) Advances(p PeriodType) bool {
	if _, ok := a.manual[p]; ok {
		return false
	}
	return p.AdvancesAutomatically()
}

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) IsValid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Period is the recurrence definition of a task.
type Period struct {
	Type PeriodType
	Time TimeOfDay
	// HasTime is false when a one-time task fires at its exact start instant.
	HasTime   bool
	WeekDays  []int
	MonthDays []int
	Months    []int
}

// Weekdays returns the valid weekdays of the period. 0 and 7 both mean Sunday.
func (p Period) Weekdays() []time.Weekday {
	var out []time.Weekday
	for _, d := range p.WeekDays {
		if d < 0 || d > 7 {
			continue
		}
		wd := time.Weekday(d % 7)
		if !slices.Contains(out, wd) {
			out = append(out, wd)
		}
	}
	return out
}

func (p Period) ValidMonthDays() []int {
	return filterRange(p.MonthDays, 1, 31)
}

func (p Period) ValidMonths() []int {
	return filterRange(p.Months, 1, 12)
}

// Validate reports configuration problems for the authoring path.
func (p Period) Validate(start *time.Time) error {
	if !p.Type.IsValid() {
		return ErrInvalidPeriodType
	}
	if p.HasTime && !p.Time.IsValid() {
		return ErrInvalidTimeOfDay
	}

	switch p.Type {
	case PeriodOnce:
		if start == nil {
			return ErrMissingStart
		}
	case PeriodWeekly:
		if len(p.Weekdays()) == 0 {
			return ErrEmptyWeekDays
		}
	case PeriodMonthly:
		if len(p.ValidMonthDays()) == 0 {
			return ErrEmptyMonthDays
		}
	case PeriodYearly:
		if len(p.ValidMonths()) == 0 {
			return ErrEmptyMonths
		}
		if len(p.ValidMonthDays()) == 0 {
			return ErrEmptyMonthDays
		}
		if !YearlyDatePossible(p.ValidMonths(), p.ValidMonthDays()) {
			return ErrImpossibleDate
		}
	}
	return nil
}

// YearlyDatePossible reports whether at least one month/day pair exists in some year.
func YearlyDatePossible(months, days []int) bool {
	for _, m := range months {
		// 2024 is a leap year, so February allows 29.
		last := time.Date(2024, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		for _, d := range days {
			if d <= last {
				return true
			}
		}
	}
	return false
}

func filterRange(values []int, lo, hi int) []int {
	var out []int
	for _, v := range values {
		if v < lo || v > hi || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
