// Package engine orchestrates the alarm lifecycle: it mutates the store,
// keeps platform triggers and the registry in step, reacts to firings, and
// runs the snooze and dismissal flows.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/alarmd/internal/alarm"
	"github.com/example/alarmd/internal/ring"
	"github.com/example/alarmd/internal/store"
	"github.com/example/alarmd/internal/trigger"
)

// ErrNotRinging is returned when a dismiss or snooze arrives while no alarm
// is sounding.
var ErrNotRinging = errors.New("engine: no alarm is ringing")

// Engine serializes every lifecycle mutation behind a single mutex so that a
// trigger is never cancelled and re-registered concurrently for the same
// alarm.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	scheduler *trigger.Scheduler
	registry  *trigger.Registry
	session   *ring.Session

	now            func() time.Time
	snoozeDuration time.Duration
	logger         *slog.Logger
}

// New wires the engine. A non-positive snoozeDuration selects the default;
// a nil now selects the wall clock.
func New(st *store.Store, scheduler *trigger.Scheduler, registry *trigger.Registry, session *ring.Session, now func() time.Time, snoozeDuration time.Duration, logger *slog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	if snoozeDuration <= 0 {
		snoozeDuration = ring.DefaultSnoozeDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:          st,
		scheduler:      scheduler,
		registry:       registry,
		session:        session,
		now:            now,
		snoozeDuration: snoozeDuration,
		logger:         logger,
	}
}

// ListAlarms returns the persisted collection in its stored order, soonest
// next fire first.
func (e *Engine) ListAlarms(ctx context.Context) ([]alarm.Alarm, error) {
	return e.store.List(ctx)
}

// GetAlarm returns a single alarm definition.
func (e *Engine) GetAlarm(ctx context.Context, id string) (alarm.Alarm, error) {
	return e.store.Get(ctx, id)
}

// CreateAlarm persists a new alarm and, when it is enabled with an upcoming
// fire, registers a platform trigger for it. A scheduling failure leaves the
// alarm persisted without a trigger and is reported to the caller.
func (e *Engine) CreateAlarm(ctx context.Context, params store.CreateParams) (alarm.Alarm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	created, err := e.store.Create(ctx, params)
	if err != nil {
		return alarm.Alarm{}, err
	}

	regErr := e.register(ctx, created)
	e.resort(ctx)
	return created, regErr
}

// UpdateAlarm replaces an alarm's definition. The store mutation comes
// first: a rejected update leaves the existing trigger untouched. On
// success the old trigger is cancelled before the new one is registered, so
// the alarm never carries two handles. When the old trigger is a native
// system alarm, the update still completes and ErrCancelUnsupported is
// returned as a signal.
func (e *Engine) UpdateAlarm(ctx context.Context, id string, params store.UpdateParams) (alarm.Alarm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	updated, err := e.store.Update(ctx, id, params)
	if err != nil {
		return alarm.Alarm{}, err
	}

	signal := e.cancelTrigger(ctx, id)
	regErr := e.register(ctx, updated)
	e.resort(ctx)
	if regErr != nil {
		return updated, regErr
	}
	return updated, signal
}

// ToggleAlarm flips the enabled flag. Enabling registers a trigger;
// disabling cancels the existing one. Disabling an alarm backed by a native
// system alarm persists the flag and returns ErrCancelUnsupported as a
// signal.
func (e *Engine) ToggleAlarm(ctx context.Context, id string) (alarm.Alarm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	toggled, err := e.store.Toggle(ctx, id)
	if err != nil {
		return alarm.Alarm{}, err
	}

	signal := e.cancelTrigger(ctx, id)
	var regErr error
	if toggled.Enabled {
		regErr = e.register(ctx, toggled)
	}
	e.resort(ctx)
	if regErr != nil {
		return toggled, regErr
	}
	return toggled, signal
}

// DeleteAlarm removes an alarm and its trigger. The alarm leaves the store
// and registry even when its native system alarm cannot be revoked; that
// limitation is reported as ErrCancelUnsupported.
func (e *Engine) DeleteAlarm(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	signal := e.cancelTrigger(ctx, id)

	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.resort(ctx)
	return signal
}

// RingingAlarm reports the alarm currently sounding, when one is.
func (e *Engine) RingingAlarm() (alarm.Alarm, bool) {
	return e.session.Current()
}

// Triggers returns a snapshot of the active trigger handles by alarm id.
func (e *Engine) Triggers() map[string]trigger.Handle {
	return e.registry.Snapshot()
}

// ShowSystemAlarms opens the platform's own alarm UI, the place where native
// alarms this engine registered can be removed.
func (e *Engine) ShowSystemAlarms(ctx context.Context) error {
	return e.scheduler.ShowSystemAlarms(ctx)
}

// HandleFired reacts to a delivered trigger. Firings for unknown or disabled
// alarms are dropped, as is a firing that arrives while another alarm is
// already ringing.
func (e *Engine) HandleFired(ctx context.Context, event trigger.FiredEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.store.Get(ctx, event.AlarmID)
	if err != nil {
		e.logger.WarnContext(ctx, "dropping firing for unknown alarm", "alarm_id", event.AlarmID)
		return
	}
	if !a.Enabled {
		e.logger.InfoContext(ctx, "dropping firing for disabled alarm", "alarm_id", a.ID)
		return
	}

	// The delivered notification is spent; only a still-pending handle
	// belongs in the registry.
	if handle, ok := e.registry.Get(a.ID); ok && handle.Kind == trigger.KindNotification {
		e.registry.Remove(a.ID)
	}

	if err := e.session.Start(ctx, a); err != nil {
		if errors.Is(err, ring.ErrBusy) {
			e.logger.InfoContext(ctx, "ignoring firing while another alarm rings", "alarm_id", a.ID)
			return
		}
		e.logger.ErrorContext(ctx, "failed to start ringing session", "alarm_id", a.ID, "error", err)
	}
}

// DismissRinging stops the active session without scheduling anything. A
// recurring alarm's next occurrence is picked up by the reconciliation pass;
// a spent one-shot simply goes quiet.
func (e *Engine) DismissRinging(ctx context.Context) (alarm.Alarm, error) {
	stopped, ok := e.session.Stop(ctx)
	if !ok {
		return alarm.Alarm{}, ErrNotRinging
	}
	e.logger.InfoContext(ctx, "alarm dismissed", "alarm_id", stopped.ID)
	return stopped, nil
}

// SnoozeRinging stops the active session and registers a transient one-shot
// trigger for the same alarm, offset by the snooze duration. The persisted
// definition is untouched.
func (e *Engine) SnoozeRinging(ctx context.Context) (alarm.Alarm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stopped, ok := e.session.Stop(ctx)
	if !ok {
		return alarm.Alarm{}, ErrNotRinging
	}

	now := e.now()
	snoozed := ring.Snooze(stopped, now, e.snoozeDuration)

	// The snooze trigger replaces whatever handle the alarm still carries.
	if err := e.cancelTrigger(ctx, snoozed.ID); err != nil {
		e.logger.WarnContext(ctx, "previous trigger outlives the snooze", "alarm_id", snoozed.ID, "error", err)
	}

	handle, registered, err := e.scheduler.Schedule(ctx, snoozed, now)
	if err != nil {
		return alarm.Alarm{}, fmt.Errorf("failed to schedule snooze: %w", err)
	}
	if registered {
		e.registry.Set(snoozed.ID, handle)
	}

	e.logger.InfoContext(ctx, "alarm snoozed",
		"alarm_id", snoozed.ID, "fire_at", snoozed.Time, "duration", e.snoozeDuration)
	return snoozed, nil
}

// Reconcile rebuilds platform triggers from the persisted collection: every
// pending local notification is cancelled, then each enabled alarm is
// scheduled afresh and the registry repopulated. Alarms already backed by a
// native system alarm keep that handle; re-registering would duplicate them
// in the platform's alarm app. Run it at startup and whenever the process
// returns to the foreground.
func (e *Engine) Reconcile(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.scheduler.CancelAllNotifications(ctx); err != nil {
		e.logger.WarnContext(ctx, "failed to clear pending notifications", "error", err)
	}
	for id, handle := range e.registry.Snapshot() {
		if handle.Kind == trigger.KindNotification {
			e.registry.Remove(id)
		}
	}

	alarms, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list alarms for reconciliation: %w", err)
	}

	now := e.now()
	rescheduled := 0
	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		if handle, ok := e.registry.Get(a.ID); ok && handle.Kind == trigger.KindSystemAlarm {
			continue
		}
		handle, registered, err := e.scheduler.Schedule(ctx, a, now)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to reschedule alarm", "alarm_id", a.ID, "error", err)
			continue
		}
		if registered {
			e.registry.Set(a.ID, handle)
			rescheduled++
		}
	}

	e.resort(ctx)
	e.logger.InfoContext(ctx, "reconciled triggers", "alarms", len(alarms), "rescheduled", rescheduled)
	return nil
}

// Run consumes firing events until the context is cancelled or the channel
// closes.
func (e *Engine) Run(ctx context.Context, events <-chan trigger.FiredEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			e.HandleFired(ctx, event)
		}
	}
}

// register schedules a trigger for the alarm and records its handle. When
// nothing is registered (disabled, or no upcoming fire) any stale registry
// entry is dropped.
func (e *Engine) register(ctx context.Context, a alarm.Alarm) error {
	handle, registered, err := e.scheduler.Schedule(ctx, a, e.now())
	if err != nil {
		e.registry.Remove(a.ID)
		return fmt.Errorf("failed to schedule alarm %s: %w", a.ID, err)
	}
	if registered {
		e.registry.Set(a.ID, handle)
	} else {
		e.registry.Remove(a.ID)
	}
	return nil
}

// cancelTrigger revokes the registered trigger for an alarm id. A missing
// entry is a no-op. ErrCancelUnsupported propagates as a signal; any other
// cancellation failure means the trigger is already gone or stale and is
// only logged.
func (e *Engine) cancelTrigger(ctx context.Context, id string) error {
	handle, ok := e.registry.Remove(id)
	if !ok {
		return nil
	}
	err := e.scheduler.Cancel(ctx, handle)
	if errors.Is(err, trigger.ErrCancelUnsupported) {
		return err
	}
	if err != nil {
		e.logger.WarnContext(ctx, "failed to cancel trigger", "alarm_id", id, "error", err)
	}
	return nil
}

// resort rewrites the persisted collection ordered by ascending next fire
// time; alarms with no upcoming fire sort last. Ordering is presentation
// state, so a failure here is logged, not escalated.
func (e *Engine) resort(ctx context.Context) {
	alarms, err := e.store.List(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to list alarms for reordering", "error", err)
		return
	}

	now := e.now()
	sort.SliceStable(alarms, func(i, j int) bool {
		fireI, okI := alarm.NextFireTime(alarms[i], now)
		fireJ, okJ := alarm.NextFireTime(alarms[j], now)
		if okI != okJ {
			return okI
		}
		if !okI {
			return false
		}
		return fireI.Before(fireJ)
	})

	if err := e.store.ReplaceAll(ctx, alarms); err != nil {
		e.logger.WarnContext(ctx, "failed to persist reordered alarms", "error", err)
	}
}
