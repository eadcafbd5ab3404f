package ring

import (
	"time"

	"github.com/example/alarmd/internal/alarm"
)

// DefaultSnoozeDuration is how far a snoozed alarm is pushed out.
const DefaultSnoozeDuration = 5 * time.Minute

// Snooze derives a transient one-shot definition from a ringing alarm: it
// fires exactly d after now, never repeats, and stays enabled. The id and
// label are preserved, so scheduling the result replaces the parent's
// registry entry. The derived definition is not persisted.
func Snooze(a alarm.Alarm, now time.Time, d time.Duration) alarm.Alarm {
	if d <= 0 {
		d = DefaultSnoozeDuration
	}
	out := a.Clone()
	out.Time = now.Add(d)
	out.Days = nil
	out.Enabled = true
	return out
}
