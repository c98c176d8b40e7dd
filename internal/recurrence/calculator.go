package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

// Search horizons measured from the anchor day. Each one covers the longest
// possible gap between two occurrences of its period type.
const (
	dailyHorizonDays  = 2
	weeklyHorizonDays = 8
	monthlyHorizon    = 24 // months
	yearlyHorizon     = 8  // years, Feb 29 can skip 8 years across 2100
)

var rruleWeekdays = [7]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Calculator computes the next occurrence of a task. It holds no state.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Next returns the first occurrence strictly after ref, respecting the task's
// validity window. With force set the search also starts no earlier than the
// currently scheduled run so that the same occurrence is never returned twice.
func (c *Calculator) Next(task *domain.Task, loc *time.Location, ref time.Time, force bool) (domain.NextRun, bool) {
	if loc == nil {
		loc = time.UTC
	}

	lower := ref
	if force && task.NextRunDateTimeUtc != nil && task.NextRunDateTimeUtc.After(lower) {
		lower = *task.NextRunDateTimeUtc
	}
	lower = lower.In(loc)

	var (
		candidate time.Time
		ok        bool
	)
	if task.Period.Type == domain.PeriodOnce {
		candidate, ok = onceCandidate(task, loc, lower)
	} else {
		candidate, ok = recurringCandidate(task, loc, lower)
	}
	if !ok {
		return domain.NextRun{}, false
	}

	// Stop is exclusive
	if task.StopDateTime != nil && !candidate.Before(*task.StopDateTime) {
		return domain.NextRun{}, false
	}

	return domain.NewNextRun(candidate), true
}

func onceCandidate(task *domain.Task, loc *time.Location, lower time.Time) (time.Time, bool) {
	if task.StartDateTime == nil {
		return time.Time{}, false
	}

	start := task.StartDateTime.In(loc)
	candidate := start
	if task.Period.HasTime {
		candidate = resolveWallClock(time.Date(start.Year(), start.Month(), start.Day(),
			task.Period.Time.Hour, task.Period.Time.Minute, 0, 0, loc), task.Period.Time, loc)
		if candidate.Before(start) {
			return time.Time{}, false
		}
	}

	if !candidate.After(lower) {
		return time.Time{}, false
	}
	return candidate, true
}

func recurringCandidate(task *domain.Task, loc *time.Location, lower time.Time) (time.Time, bool) {
	p := task.Period
	if !p.Time.IsValid() {
		return time.Time{}, false
	}

	// The search begins at the later of lower (exclusive) and start (inclusive).
	from := lower
	inclusive := false
	if task.StartDateTime != nil && task.StartDateTime.After(lower) {
		from = task.StartDateTime.In(loc)
		inclusive = true
	}

	anchor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	opt := rrule.ROption{
		Dtstart:  anchor,
		Byhour:   []int{p.Time.Hour},
		Byminute: []int{p.Time.Minute},
		Bysecond: []int{0},
	}

	switch p.Type {
	case domain.PeriodDaily:
		opt.Freq = rrule.DAILY
		opt.Until = anchor.AddDate(0, 0, dailyHorizonDays)
	case domain.PeriodWeekly:
		weekdays := p.Weekdays()
		if len(weekdays) == 0 {
			return time.Time{}, false
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = toRRuleWeekdays(weekdays)
		opt.Until = anchor.AddDate(0, 0, weeklyHorizonDays)
	case domain.PeriodMonthly:
		days := p.ValidMonthDays()
		if len(days) == 0 {
			return time.Time{}, false
		}
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = days
		opt.Until = anchor.AddDate(0, monthlyHorizon, 1)
	case domain.PeriodYearly:
		months := p.ValidMonths()
		days := p.ValidMonthDays()
		if len(months) == 0 || len(days) == 0 || !domain.YearlyDatePossible(months, days) {
			return time.Time{}, false
		}
		opt.Freq = rrule.YEARLY
		opt.Bymonth = months
		opt.Bymonthday = days
		opt.Until = anchor.AddDate(yearlyHorizon, 0, 1)
	default:
		return time.Time{}, false
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false
	}

	// Occurrences are resolved before comparison so that a gap time shifted
	// past from is still found on its own day.
	next := rule.Iterator()
	for {
		occ, ok := next()
		if !ok {
			return time.Time{}, false
		}
		occ = resolveWallClock(occ.In(loc), p.Time, loc)
		if occ.After(from) || (inclusive && occ.Equal(from)) {
			return occ, true
		}
	}
}

// resolveWallClock moves an occurrence whose wall clock does not read tod,
// which only happens inside a spring-forward gap, to the instant tod names
// under the offset in effect before the transition. 02:30 in a 02:00-03:00
// gap becomes 03:30.
func resolveWallClock(t time.Time, tod domain.TimeOfDay, loc *time.Location) time.Time {
	if t.Hour() == tod.Hour && t.Minute() == tod.Minute {
		return t
	}

	y, m, d := t.Date()
	diff := (t.Hour()*60 + t.Minute()) - (tod.Hour*60 + tod.Minute)
	switch {
	case diff > 12*60:
		d++
	case diff < -12*60:
		d--
	}

	_, offset := time.Date(y, m, d-1, tod.Hour, tod.Minute, 0, 0, loc).Zone()
	wall := time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, time.UTC)
	return wall.Add(-time.Duration(offset) * time.Second).In(loc)
}

func toRRuleWeekdays(days []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, rruleWeekdays[d])
	}
	return out
}
