package alarm

import (
	"testing"
	"time"
)

// clockTime builds an instant on the given date carrying the time-of-day the
// alarm should ring at.
func clockTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextFireTime_OneTime(t *testing.T) {
	now := clockTime(2024, time.March, 4, 12, 0) // Monday noon

	t.Run("future instant is returned verbatim", func(t *testing.T) {
		a := Alarm{Time: clockTime(2024, time.March, 4, 18, 30)}

		fireAt, ok := NextFireTime(a, now)
		if !ok {
			t.Fatal("expected an upcoming fire time")
		}
		if !fireAt.Equal(a.Time) {
			t.Fatalf("fireAt = %v, want %v", fireAt, a.Time)
		}
	})

	t.Run("past instant reports expired", func(t *testing.T) {
		a := Alarm{Time: clockTime(2024, time.March, 4, 7, 0)}

		if _, ok := NextFireTime(a, now); ok {
			t.Fatal("expected expired one-time alarm")
		}
	})

	t.Run("instant equal to now reports expired", func(t *testing.T) {
		a := Alarm{Time: now}

		if _, ok := NextFireTime(a, now); ok {
			t.Fatal("fire time must be strictly after now")
		}
	})
}

func TestNextFireTime_Recurring(t *testing.T) {
	// 2024-03-04 is a Monday.
	monday := clockTime(2024, time.March, 4, 12, 0)

	tests := []struct {
		name string
		days []time.Weekday
		time time.Time
		now  time.Time
		want time.Time
	}{
		{
			name: "today still ahead fires today",
			days: []time.Weekday{time.Monday},
			time: clockTime(2020, time.January, 1, 18, 0),
			now:  monday,
			want: clockTime(2024, time.March, 4, 18, 0),
		},
		{
			name: "today already passed picks next selected weekday",
			days: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			time: clockTime(2020, time.January, 1, 8, 0),
			now:  monday,
			want: clockTime(2024, time.March, 6, 8, 0),
		},
		{
			name: "single weekday already passed wraps a full week",
			days: []time.Weekday{time.Monday},
			time: clockTime(2020, time.January, 1, 8, 0),
			now:  monday,
			want: clockTime(2024, time.March, 11, 8, 0),
		},
		{
			name: "earlier weekday wraps to next week",
			days: []time.Weekday{time.Sunday},
			time: clockTime(2020, time.January, 1, 9, 30),
			now:  monday,
			want: clockTime(2024, time.March, 10, 9, 30),
		},
		{
			name: "time-of-day equal to now does not qualify today",
			days: []time.Weekday{time.Monday},
			time: clockTime(2020, time.January, 1, 12, 0),
			now:  monday,
			want: clockTime(2024, time.March, 11, 12, 0),
		},
		{
			name: "unsorted duplicate selection is normalized",
			days: []time.Weekday{time.Friday, time.Wednesday, time.Wednesday},
			time: clockTime(2020, time.January, 1, 8, 0),
			now:  monday,
			want: clockTime(2024, time.March, 6, 8, 0),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := Alarm{Time: tc.time, Days: tc.days}

			fireAt, ok := NextFireTime(a, tc.now)
			if !ok {
				t.Fatal("recurring alarms always have an upcoming fire time")
			}
			if !fireAt.Equal(tc.want) {
				t.Fatalf("fireAt = %v, want %v", fireAt, tc.want)
			}
		})
	}
}

func TestNextFireTime_RecurringBounds(t *testing.T) {
	// Every combination of weekday selection and probe hour must resolve to
	// an instant after now and within seven days.
	base := clockTime(2024, time.March, 4, 0, 0)

	selections := [][]time.Weekday{
		{time.Sunday},
		{time.Monday, time.Thursday},
		{time.Saturday},
		{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	}

	for dayOffset := 0; dayOffset < 7; dayOffset++ {
		for hour := 0; hour < 24; hour += 5 {
			now := base.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
			for _, days := range selections {
				a := Alarm{Time: clockTime(2020, time.January, 1, 6, 15), Days: days}

				fireAt, ok := NextFireTime(a, now)
				if !ok {
					t.Fatalf("no fire time for days=%v now=%v", days, now)
				}
				if !fireAt.After(now) {
					t.Fatalf("fireAt %v not after now %v (days=%v)", fireAt, now, days)
				}
				if fireAt.Sub(now) > 7*24*time.Hour {
					t.Fatalf("fireAt %v more than 7 days after now %v (days=%v)", fireAt, now, days)
				}
				if fireAt.Hour() != 6 || fireAt.Minute() != 15 {
					t.Fatalf("fireAt %v lost the alarm time-of-day", fireAt)
				}
			}
		}
	}
}
