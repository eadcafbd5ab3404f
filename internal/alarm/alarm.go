package alarm

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxLabelLength bounds the free-text label of an alarm.
const MaxLabelLength = 30

// Alarm is a persisted user-configured alarm definition.
//
// Time carries a wall-clock instant whose time-of-day component is
// authoritative; the date component only matters for one-time alarms
// (Days empty). Days holds the repeat weekdays, deduplicated and sorted
// ascending, with Sunday == 0.
type Alarm struct {
	ID        string         `json:"id"`
	Time      time.Time      `json:"time"`
	Label     string         `json:"label"`
	Days      []time.Weekday `json:"days"`
	Enabled   bool           `json:"enabled"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recurring reports whether the alarm repeats on at least one weekday.
func (a Alarm) Recurring() bool {
	return len(a.Days) > 0
}

// Clone returns a deep copy of the alarm.
func (a Alarm) Clone() Alarm {
	out := a
	out.Days = append([]time.Weekday(nil), a.Days...)
	return out
}

// NormalizeDays deduplicates and sorts a weekday selection. The input slice is
// not modified.
func NormalizeDays(days []time.Weekday) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[time.Weekday]struct{}, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks label and weekday constraints for alarm input.
func Validate(label string, days []time.Weekday) error {
	vErr := &ValidationError{}

	if len(label) > MaxLabelLength {
		vErr.add("label", fmt.Sprintf("label must be at most %d characters", MaxLabelLength))
	}

	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			vErr.add("days", "weekdays must be between Sunday (0) and Saturday (6)")
			break
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

var shortDayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatWeekdays renders a weekday selection for display: "One time" for an
// empty selection, "Every day" for all seven, otherwise the sorted
// comma-separated short names.
func FormatWeekdays(days []time.Weekday) string {
	days = NormalizeDays(days)
	switch {
	case len(days) == 0:
		return "One time"
	case len(days) == 7:
		return "Every day"
	}
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, shortDayNames[day])
	}
	return strings.Join(names, ", ")
}

// FormatTime renders the time-of-day in 12-hour clock notation, e.g. "7:05 AM".
func FormatTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}
