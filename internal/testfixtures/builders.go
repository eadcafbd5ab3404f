package testfixtures

import (
	"time"

	"github.com/example/alarmd/internal/alarm"
)

// NewAlarm builds an enabled alarm anchored to ReferenceTime. The hour and
// minute place the fire time on the reference day; pass weekdays to make it
// recurring.
func NewAlarm(id string, hour, minute int, days ...time.Weekday) alarm.Alarm {
	ref := ReferenceTime()
	return alarm.Alarm{
		ID:        id,
		Time:      time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()),
		Label:     "Alarm " + id,
		Days:      days,
		Enabled:   true,
		CreatedAt: ref,
	}
}
