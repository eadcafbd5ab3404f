package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/alarmd/internal/alarm"
)

var (
	// ErrScheduleFailed is returned when every platform fallback was
	// exhausted without registering a trigger.
	ErrScheduleFailed = errors.New("trigger: failed to register platform trigger")

	// ErrCancelUnsupported signals that a system-alarm handle cannot be
	// cancelled programmatically. It marks a limitation, not a failure: the
	// caller is expected to point the user at the platform's own alarm UI.
	ErrCancelUnsupported = errors.New("trigger: system alarms cannot be cancelled programmatically")
)

// Scheduler realizes alarm definitions as platform triggers, preferring the
// native system alarm capability and falling back to a timed local
// notification.
type Scheduler struct {
	notifications NotificationCapability
	systemAlarms  SystemAlarmCapability
	logger        *slog.Logger
}

// NewScheduler wires the scheduler. systemAlarms may be nil on hosts without
// a native alarm manager.
func NewScheduler(notifications NotificationCapability, systemAlarms SystemAlarmCapability, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		notifications: notifications,
		systemAlarms:  systemAlarms,
		logger:        logger,
	}
}

// Schedule registers a platform trigger for the alarm's next fire time.
// registered is false when nothing was registered: the alarm is disabled or
// an expired one-shot. A native registration failure falls back to the
// notification path; only when both paths are exhausted is an error
// returned.
func (s *Scheduler) Schedule(ctx context.Context, a alarm.Alarm, now time.Time) (handle Handle, registered bool, err error) {
	if !a.Enabled {
		return Handle{}, false, nil
	}

	fireAt, ok := alarm.NextFireTime(a, now)
	if !ok {
		return Handle{}, false, nil
	}

	if s.systemAlarms != nil && s.systemAlarms.Available() {
		if handle, ok := s.trySystemAlarm(ctx, a, fireAt); ok {
			return handle, true, nil
		}
	}

	id, err := s.notifications.ScheduleAt(ctx, fireAt, Payload{AlarmID: a.ID})
	if err != nil {
		return Handle{}, false, fmt.Errorf("%w: %v", ErrScheduleFailed, err)
	}

	s.logger.DebugContext(ctx, "scheduled notification trigger",
		"alarm_id", a.ID, "fire_at", fireAt, "notification_id", id)
	return Handle{Kind: KindNotification, Value: id}, true, nil
}

func (s *Scheduler) trySystemAlarm(ctx context.Context, a alarm.Alarm, fireAt time.Time) (Handle, bool) {
	label := a.Label
	if label == "" {
		label = "Alarm"
	}

	result, err := s.systemAlarms.SetAlarm(ctx, SystemAlarmRequest{
		Hour:   fireAt.Hour(),
		Minute: fireAt.Minute(),
		Days:   append([]time.Weekday(nil), a.Days...),
		Label:  label,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "system alarm registration failed, falling back to notification",
			"alarm_id", a.ID, "error", err)
		return Handle{}, false
	}
	if !result.Success() {
		s.logger.WarnContext(ctx, "system alarm was not set, falling back to notification",
			"alarm_id", a.ID, "result_code", int(result.Code))
		return Handle{}, false
	}

	// The handle value is the alarm id; the system keeps no identifier of
	// its own. The Kind tag is what gives it meaning.
	return Handle{Kind: KindSystemAlarm, Value: a.ID}, true
}

// Cancel revokes a previously registered trigger. Notification handles
// cancel the pending notification; system-alarm handles return
// ErrCancelUnsupported so the caller can surface the limitation; zero
// handles are a no-op.
func (s *Scheduler) Cancel(ctx context.Context, handle Handle) error {
	switch handle.Kind {
	case KindNone:
		return nil
	case KindNotification:
		if err := s.notifications.Cancel(ctx, handle.Value); err != nil {
			return fmt.Errorf("failed to cancel notification %s: %w", handle.Value, err)
		}
		return nil
	case KindSystemAlarm:
		return ErrCancelUnsupported
	default:
		return fmt.Errorf("unknown handle kind %d", handle.Kind)
	}
}

// CancelAllNotifications drops every pending local notification trigger.
// System alarms are untouched; there is no primitive for them.
func (s *Scheduler) CancelAllNotifications(ctx context.Context) error {
	if err := s.notifications.CancelAll(ctx); err != nil {
		return fmt.Errorf("failed to cancel pending notifications: %w", err)
	}
	return nil
}

// ShowSystemAlarms opens the platform's own alarm UI when available, the
// only way users can remove a system alarm this engine registered.
func (s *Scheduler) ShowSystemAlarms(ctx context.Context) error {
	if s.systemAlarms == nil || !s.systemAlarms.Available() {
		return nil
	}
	return s.systemAlarms.ShowAlarms(ctx)
}
