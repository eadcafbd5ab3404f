package ring

import (
	"testing"
	"time"

	"github.com/example/alarmd/internal/alarm"
)

func TestSnooze(t *testing.T) {
	now := time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)
	parent := alarm.Alarm{
		ID:        "a-1",
		Time:      time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC),
		Label:     "wake up",
		Days:      []time.Weekday{time.Monday, time.Friday},
		Enabled:   true,
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("derives a one-shot offset by the snooze duration", func(t *testing.T) {
		snoozed := Snooze(parent, now, 10*time.Minute)

		if !snoozed.Time.Equal(now.Add(10 * time.Minute)) {
			t.Fatalf("Time = %v, want now+10m", snoozed.Time)
		}
		if len(snoozed.Days) != 0 {
			t.Fatalf("Days = %v, want empty: snoozes never repeat", snoozed.Days)
		}
		if !snoozed.Enabled {
			t.Fatal("snoozed alarm must stay enabled")
		}
		if snoozed.ID != parent.ID || snoozed.Label != parent.Label {
			t.Fatalf("identity not preserved: %+v", snoozed)
		}
	})

	t.Run("non-positive duration selects the default", func(t *testing.T) {
		snoozed := Snooze(parent, now, 0)

		if !snoozed.Time.Equal(now.Add(DefaultSnoozeDuration)) {
			t.Fatalf("Time = %v, want now+%v", snoozed.Time, DefaultSnoozeDuration)
		}
	})

	t.Run("parent definition is untouched", func(t *testing.T) {
		snoozed := Snooze(parent, now, time.Minute)
		snoozed.Days = append(snoozed.Days, time.Sunday)

		if len(parent.Days) != 2 {
			t.Fatalf("parent Days mutated: %v", parent.Days)
		}
	})
}
