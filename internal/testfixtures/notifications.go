package testfixtures

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/alarmd/internal/trigger"
)

// FakeNotifications is an in-memory trigger.NotificationCapability. Pending
// requests are held until a test fires them explicitly with Fire.
type FakeNotifications struct {
	mu          sync.Mutex
	counter     int
	pending     map[string]pendingNotification
	events      chan trigger.FiredEvent
	scheduleErr error
	cancelErr   error
}

type pendingNotification struct {
	alarmID string
	at      time.Time
}

// NewFakeNotifications returns a capability with a buffered event channel.
func NewFakeNotifications() *FakeNotifications {
	return &FakeNotifications{
		pending: make(map[string]pendingNotification),
		events:  make(chan trigger.FiredEvent, 16),
	}
}

// FailSchedules makes subsequent ScheduleAt calls return err.
func (f *FakeNotifications) FailSchedules(err error) {
	f.mu.Lock()
	f.scheduleErr = err
	f.mu.Unlock()
}

// FailCancels makes subsequent Cancel calls return err.
func (f *FakeNotifications) FailCancels(err error) {
	f.mu.Lock()
	f.cancelErr = err
	f.mu.Unlock()
}

// ScheduleAt implements trigger.NotificationCapability.
func (f *FakeNotifications) ScheduleAt(ctx context.Context, at time.Time, payload trigger.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.counter++
	id := fmt.Sprintf("notif-%d", f.counter)
	f.pending[id] = pendingNotification{alarmID: payload.AlarmID, at: at}
	return id, nil
}

// Cancel implements trigger.NotificationCapability.
func (f *FakeNotifications) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	delete(f.pending, id)
	return nil
}

// CancelAll implements trigger.NotificationCapability.
func (f *FakeNotifications) CancelAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.pending = make(map[string]pendingNotification)
	return nil
}

// Events implements trigger.NotificationCapability.
func (f *FakeNotifications) Events() <-chan trigger.FiredEvent {
	return f.events
}

// Fire delivers the pending notification with the given id, removing it from
// the pending set. It reports whether such a notification existed.
func (f *FakeNotifications) Fire(id string) bool {
	f.mu.Lock()
	p, ok := f.pending[id]
	if ok {
		delete(f.pending, id)
	}
	f.mu.Unlock()
	if !ok {
		return false
	}
	f.events <- trigger.FiredEvent{AlarmID: p.alarmID, At: p.at}
	return true
}

// Emit pushes a firing event directly, bypassing the pending set.
func (f *FakeNotifications) Emit(alarmID string, at time.Time) {
	f.events <- trigger.FiredEvent{AlarmID: alarmID, At: at}
}

// PendingCount reports how many notifications are currently scheduled.
func (f *FakeNotifications) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// PendingFor returns the notification ids scheduled for the given alarm.
func (f *FakeNotifications) PendingFor(alarmID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, p := range f.pending {
		if p.alarmID == alarmID {
			ids = append(ids, id)
		}
	}
	return ids
}
