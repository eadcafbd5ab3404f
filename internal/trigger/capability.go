package trigger

import (
	"context"
	"time"
)

// Payload travels with a scheduled notification so the firing trigger can be
// correlated back to its alarm definition.
type Payload struct {
	AlarmID string `json:"alarmId"`
}

// FiredEvent is emitted by the notification capability when a scheduled
// trigger fires or is tapped.
type FiredEvent struct {
	AlarmID string
	At      time.Time
}

// NotificationCapability is the platform's local scheduled-notification
// mechanism. Triggers are cancellable by the identifier ScheduleAt returns.
type NotificationCapability interface {
	ScheduleAt(ctx context.Context, at time.Time, payload Payload) (string, error)
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) error
	Events() <-chan FiredEvent
}

// SystemAlarmResultCode mirrors the platform alarm manager's activity result
// codes.
type SystemAlarmResultCode int

const (
	// ResultSuccess reports the alarm was accepted by the system alarm app.
	ResultSuccess SystemAlarmResultCode = -1
	// ResultCanceled reports the user dismissed the system alarm UI.
	ResultCanceled SystemAlarmResultCode = 0
	// ResultFirstUser marks the start of the platform's custom result range.
	ResultFirstUser SystemAlarmResultCode = 1
)

// SystemAlarmRequest carries the resolved clock time, repeat weekdays (empty
// for one-shot) and label for a native system alarm.
type SystemAlarmRequest struct {
	Hour   int
	Minute int
	Days   []time.Weekday
	Label  string
}

// SystemAlarmResult is the platform's answer to a SetAlarm request.
type SystemAlarmResult struct {
	Code SystemAlarmResultCode
}

// Success reports whether the system alarm was actually set.
func (r SystemAlarmResult) Success() bool {
	return r.Code == ResultSuccess
}

// SystemAlarmCapability integrates with the platform's native alarm manager.
// Alarms set through it cannot be cancelled programmatically; ShowAlarms
// opens the platform's own alarm UI so the user can.
type SystemAlarmCapability interface {
	Available() bool
	SetAlarm(ctx context.Context, req SystemAlarmRequest) (SystemAlarmResult, error)
	ShowAlarms(ctx context.Context) error
}
