// Package systemalarm covers hosts without a native alarm manager. The
// scheduler treats an unavailable capability as "fall back to notifications",
// so this implementation only has to say no.
package systemalarm

import (
	"context"
	"errors"

	"github.com/example/alarmd/internal/trigger"
)

// ErrUnavailable is returned if SetAlarm is called despite Available
// reporting false.
var ErrUnavailable = errors.New("systemalarm: no native alarm manager on this host")

// Unavailable is the trigger.SystemAlarmCapability for hosts without a
// native alarm manager.
type Unavailable struct{}

// Available implements trigger.SystemAlarmCapability.
func (Unavailable) Available() bool { return false }

// SetAlarm implements trigger.SystemAlarmCapability.
func (Unavailable) SetAlarm(ctx context.Context, req trigger.SystemAlarmRequest) (trigger.SystemAlarmResult, error) {
	return trigger.SystemAlarmResult{Code: trigger.ResultCanceled}, ErrUnavailable
}

// ShowAlarms implements trigger.SystemAlarmCapability.
func (Unavailable) ShowAlarms(ctx context.Context) error {
	return ErrUnavailable
}
