package alarm

import "time"

// NextFireTime computes the next instant at which the alarm should fire
// strictly after now, in now's location.
//
// One-time alarms (Days empty) fire at their stored instant when it is still
// ahead; otherwise they are expired and ok is false. Recurring alarms fire on
// the earliest selected weekday at the stored time-of-day: today qualifies
// only while the time-of-day is still strictly ahead, later weekdays this
// week win over next week, and when nothing qualifies this week the smallest
// selected weekday wraps to next week (a zero or negative day offset is
// normalized by adding seven).
//
// The function is pure: no side effects, deterministic for a given now.
func NextFireTime(a Alarm, now time.Time) (fireAt time.Time, ok bool) {
	if !a.Recurring() {
		if a.Time.After(now) {
			return a.Time, true
		}
		return time.Time{}, false
	}

	days := NormalizeDays(a.Days)
	today := now.Weekday()
	todayFire := combineDateTime(now, a.Time, now.Location())

	next := days[0]
	found := false
	for _, day := range days {
		if day == today && todayFire.After(now) {
			next = day
			found = true
			break
		}
		if day > today {
			next = day
			found = true
			break
		}
	}

	offset := int(next) - int(today)
	if !found || offset < 0 {
		// Wrap to the smallest selected weekday next week.
		offset = int(days[0]) - int(today)
		if offset <= 0 {
			offset += 7
		}
	}

	return combineDateTime(now.AddDate(0, 0, offset), a.Time, now.Location()), true
}

// combineDateTime keeps the date of dateSource and the time-of-day of
// template, expressed in loc.
func combineDateTime(dateSource, template time.Time, loc *time.Location) time.Time {
	y, m, d := dateSource.In(loc).Date()
	tod := template.In(loc)
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), loc)
}
