package recurrence

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestCalculator_Next(t *testing.T) {
	utc := time.UTC
	calc := NewCalculator()

	tests := []struct {
		name   string
		task   domain.Task
		ref    time.Time
		want   time.Time
		wantOK bool
	}{
		{
			name:   "daily before time fires today",
			task:   domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}}},
			ref:    time.Date(2025, 3, 3, 8, 59, 0, 0, utc),
			want:   time.Date(2025, 3, 3, 9, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name:   "daily after time fires tomorrow",
			task:   domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}}},
			ref:    time.Date(2025, 3, 3, 9, 1, 0, 0, utc),
			want:   time.Date(2025, 3, 4, 9, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name:   "daily exactly at time is strict",
			task:   domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}}},
			ref:    time.Date(2025, 3, 3, 9, 0, 0, 0, utc),
			want:   time.Date(2025, 3, 4, 9, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "weekly tuesday friday from wednesday",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodWeekly, Time: domain.TimeOfDay{Hour: 7, Minute: 30}, WeekDays: []int{2, 5},
			}},
			ref:    time.Date(2025, 3, 5, 12, 0, 0, 0, utc), // Wednesday
			want:   time.Date(2025, 3, 7, 7, 30, 0, 0, utc), // Friday
			wantOK: true,
		},
		{
			name: "weekly sunday as seven",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodWeekly, Time: domain.TimeOfDay{Hour: 10}, WeekDays: []int{7},
			}},
			ref:    time.Date(2025, 3, 5, 12, 0, 0, 0, utc),
			want:   time.Date(2025, 3, 9, 10, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "weekly empty set",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodWeekly, Time: domain.TimeOfDay{Hour: 10},
			}},
			ref:    time.Date(2025, 3, 5, 12, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name: "monthly day 31 skips april",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodMonthly, Time: domain.TimeOfDay{Hour: 8}, MonthDays: []int{31},
			}},
			ref:    time.Date(2025, 4, 10, 0, 0, 0, 0, utc),
			want:   time.Date(2025, 5, 31, 8, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "monthly picks earliest day",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodMonthly, Time: domain.TimeOfDay{Hour: 8}, MonthDays: []int{20, 5},
			}},
			ref:    time.Date(2025, 4, 10, 0, 0, 0, 0, utc),
			want:   time.Date(2025, 4, 20, 8, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "monthly invalid days only",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodMonthly, Time: domain.TimeOfDay{Hour: 8}, MonthDays: []int{0, 40},
			}},
			ref:    time.Date(2025, 4, 10, 0, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name: "yearly leap day",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodYearly, Time: domain.TimeOfDay{Hour: 6}, Months: []int{2}, MonthDays: []int{29},
			}},
			ref:    time.Date(2025, 1, 1, 0, 0, 0, 0, utc),
			want:   time.Date(2028, 2, 29, 6, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "yearly impossible combination",
			task: domain.Task{Period: domain.Period{
				Type: domain.PeriodYearly, Time: domain.TimeOfDay{Hour: 6}, Months: []int{2, 4}, MonthDays: []int{31},
			}},
			ref:    time.Date(2025, 1, 1, 0, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name: "start in future is inclusive",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}},
				StartDateTime: ptr(time.Date(2025, 6, 1, 9, 0, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			want:   time.Date(2025, 6, 1, 9, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "stop is exclusive",
			task: domain.Task{
				Period:       domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}},
				StopDateTime: ptr(time.Date(2025, 3, 4, 9, 0, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name: "once at period time on start date",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodOnce, HasTime: true, Time: domain.TimeOfDay{Hour: 18}},
				StartDateTime: ptr(time.Date(2025, 3, 10, 0, 0, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			want:   time.Date(2025, 3, 10, 18, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "once with time earlier than start",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodOnce, HasTime: true, Time: domain.TimeOfDay{Hour: 9}},
				StartDateTime: ptr(time.Date(2025, 3, 10, 10, 0, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 1, 0, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name: "once with time equal to start",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodOnce, HasTime: true, Time: domain.TimeOfDay{Hour: 10}},
				StartDateTime: ptr(time.Date(2025, 3, 10, 10, 0, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 1, 0, 0, 0, 0, utc),
			want:   time.Date(2025, 3, 10, 10, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "once without time uses start",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodOnce},
				StartDateTime: ptr(time.Date(2025, 3, 10, 14, 45, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			want:   time.Date(2025, 3, 10, 14, 45, 0, 0, utc),
			wantOK: true,
		},
		{
			name: "once elapsed",
			task: domain.Task{
				Period:        domain.Period{Type: domain.PeriodOnce},
				StartDateTime: ptr(time.Date(2025, 3, 1, 14, 45, 0, 0, utc)),
			},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name:   "once without start",
			task:   domain.Task{Period: domain.Period{Type: domain.PeriodOnce}},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			wantOK: false,
		},
		{
			name:   "unknown period type",
			task:   domain.Task{Period: domain.Period{Type: domain.PeriodType(42)}},
			ref:    time.Date(2025, 3, 3, 12, 0, 0, 0, utc),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := calc.Next(&tt.task, utc, tt.ref, false)
			if ok != tt.wantOK {
				t.Fatalf("Next() ok = %v, want %v (got %v)", ok, tt.wantOK, got.UTC)
			}
			if !ok {
				return
			}
			if !got.UTC.Equal(tt.want) {
				t.Errorf("Next() utc = %v, want %v", got.UTC, tt.want)
			}
		})
	}
}

func TestCalculator_Next_OwnerTimezone(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	calc := NewCalculator()

	task := &domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}}}
	ref := time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC) // 10:00 in Tokyo

	got, ok := calc.Next(task, tokyo, ref, false)
	if !ok {
		t.Fatal("Next() ok = false, want true")
	}

	wantLocal := time.Date(2025, 3, 4, 9, 0, 0, 0, tokyo)
	if !got.Local.Equal(wantLocal) {
		t.Errorf("Next() local = %v, want %v", got.Local, wantLocal)
	}
	if got.Local.Location() != tokyo {
		t.Errorf("Next() local location = %v, want %v", got.Local.Location(), tokyo)
	}
	if want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC); !got.UTC.Equal(want) {
		t.Errorf("Next() utc = %v, want %v", got.UTC, want)
	}
}

func TestCalculator_Next_DSTOffsetFollowsOccurrenceDate(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	calc := NewCalculator()

	task := &domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}}}

	// 2025-03-09 is the spring-forward date in New York.
	first, ok := calc.Next(task, ny, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), false)
	if !ok {
		t.Fatal("first Next() ok = false")
	}
	if want := time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC); !first.UTC.Equal(want) {
		t.Errorf("EST occurrence utc = %v, want %v", first.UTC, want)
	}

	second, ok := calc.Next(task, ny, first.UTC, false)
	if !ok {
		t.Fatal("second Next() ok = false")
	}
	if want := time.Date(2025, 3, 9, 13, 0, 0, 0, time.UTC); !second.UTC.Equal(want) {
		t.Errorf("EDT occurrence utc = %v, want %v", second.UTC, want)
	}
	if second.Local.Hour() != 9 {
		t.Errorf("local hour = %d, want 9", second.Local.Hour())
	}
}

func TestCalculator_Next_SpringForwardGapResolvesForward(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	calc := NewCalculator()

	task := &domain.Task{Period: domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 2, Minute: 30}}}

	// 02:30 does not exist in New York on 2025-03-09.
	gapInstant := time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "from local midnight",
			ref:  time.Date(2025, 3, 9, 0, 0, 0, 0, ny),
			want: gapInstant,
		},
		{
			name: "from inside the shifted hour",
			ref:  time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC),
			want: gapInstant,
		},
		{
			name: "after the gap occurrence",
			ref:  gapInstant,
			want: time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := calc.Next(task, ny, tt.ref, false)
			if !ok {
				t.Fatal("Next() ok = false, want true")
			}
			if !got.UTC.Equal(tt.want) {
				t.Errorf("Next() utc = %v, want %v", got.UTC, tt.want)
			}
		})
	}

	got, _ := calc.Next(task, ny, time.Date(2025, 3, 9, 0, 0, 0, 0, ny), false)
	if got.Local.Hour() != 3 || got.Local.Minute() != 30 {
		t.Errorf("gap occurrence local = %v, want 03:30 EDT", got.Local)
	}
}

func TestCalculator_Next_ForceSkipsScheduledOccurrence(t *testing.T) {
	calc := NewCalculator()
	scheduled := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	task := &domain.Task{
		Period:             domain.Period{Type: domain.PeriodDaily, Time: domain.TimeOfDay{Hour: 9}},
		NextRunDateTimeUtc: &scheduled,
	}

	// A tick evaluated slightly before the stored occurrence.
	ref := scheduled.Add(-30 * time.Second)

	notForced, ok := calc.Next(task, time.UTC, ref, false)
	if !ok || !notForced.UTC.Equal(scheduled) {
		t.Fatalf("Next(force=false) = %v,%v, want %v", notForced.UTC, ok, scheduled)
	}

	forced, ok := calc.Next(task, time.UTC, ref, true)
	if !ok {
		t.Fatal("Next(force=true) ok = false")
	}
	if want := scheduled.AddDate(0, 0, 1); !forced.UTC.Equal(want) {
		t.Errorf("Next(force=true) utc = %v, want %v", forced.UTC, want)
	}
}

func TestCalculator_Next_ForcedOnceRetires(t *testing.T) {
	calc := NewCalculator()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	task := &domain.Task{
		Period:             domain.Period{Type: domain.PeriodOnce},
		StartDateTime:      &start,
		NextRunDateTimeUtc: &start,
	}

	if _, ok := calc.Next(task, time.UTC, start.Add(-time.Second), true); ok {
		t.Error("Next(force=true) on a one-time task should yield none")
	}
}

func TestCalculator_Next_ForcedChainIncreasesUntilStop(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	calc := NewCalculator()
	at := domain.TimeOfDay{Hour: 2, Minute: 30}
	gapInstant := time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    domain.Period
		from      time.Time
		stop      time.Time
		wantCount int
	}{
		{
			name:      "daily",
			period:    domain.Period{Type: domain.PeriodDaily, Time: at},
			from:      time.Date(2025, 3, 1, 0, 0, 0, 0, ny),
			stop:      time.Date(2025, 3, 15, 0, 0, 0, 0, ny),
			wantCount: 14,
		},
		{
			name:      "weekly",
			period:    domain.Period{Type: domain.PeriodWeekly, Time: at, WeekDays: []int{7, 3}},
			from:      time.Date(2025, 3, 1, 0, 0, 0, 0, ny),
			stop:      time.Date(2025, 3, 15, 0, 0, 0, 0, ny),
			wantCount: 4,
		},
		{
			name:      "monthly",
			period:    domain.Period{Type: domain.PeriodMonthly, Time: at, MonthDays: []int{9}},
			from:      time.Date(2025, 1, 1, 0, 0, 0, 0, ny),
			stop:      time.Date(2025, 12, 1, 0, 0, 0, 0, ny),
			wantCount: 11,
		},
		{
			name:      "yearly",
			period:    domain.Period{Type: domain.PeriodYearly, Time: at, Months: []int{3}, MonthDays: []int{9}},
			from:      time.Date(2025, 1, 1, 0, 0, 0, 0, ny),
			stop:      time.Date(2030, 1, 1, 0, 0, 0, 0, ny),
			wantCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := tt.stop
			task := &domain.Task{Period: tt.period, StopDateTime: &stop}

			ref := tt.from
			var (
				prev    time.Time
				count   int
				sawGap  bool
				stopped bool
			)
			for i := 0; i < 100; i++ {
				next, ok := calc.Next(task, ny, ref, true)
				if !ok {
					stopped = true
					break
				}
				if !prev.IsZero() && !next.UTC.After(prev) {
					t.Fatalf("step %d: %v is not after %v", i, next.UTC, prev)
				}
				if !next.UTC.Before(stop) {
					t.Fatalf("step %d: %v reached stop %v", i, next.UTC, stop)
				}
				if next.UTC.Equal(gapInstant) {
					sawGap = true
				}

				task.SetNextRun(&next)
				prev = next.UTC
				count++
				// Evaluate just before the stored run so only force moves past it.
				ref = next.UTC.Add(-time.Minute)
			}

			if !stopped {
				t.Fatal("chain did not terminate")
			}
			if count != tt.wantCount {
				t.Errorf("occurrences = %d, want %d", count, tt.wantCount)
			}
			if !sawGap {
				t.Errorf("chain skipped the spring-forward occurrence %v", gapInstant)
			}
		})
	}
}
