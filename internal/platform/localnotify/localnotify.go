// Package localnotify implements the timed-notification capability with
// in-process timers. Pending triggers live only as long as the process, which
// is exactly the durability the reconciliation pass assumes.
package localnotify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/alarmd/internal/trigger"
)

// ErrClosed is returned when scheduling against a closed service.
var ErrClosed = errors.New("localnotify: service is closed")

const eventBuffer = 16

type pending struct {
	timer   *time.Timer
	payload trigger.Payload
	at      time.Time
}

// Service schedules one timer per pending notification and delivers firings
// on its event channel.
type Service struct {
	mu      sync.Mutex
	pending map[string]pending
	events  chan trigger.FiredEvent
	closed  bool

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// New returns a ready service. nil arguments select uuid ids, the wall clock
// and the default logger.
func New(newID func() string, now func() time.Time, logger *slog.Logger) *Service {
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pending: make(map[string]pending),
		events:  make(chan trigger.FiredEvent, eventBuffer),
		newID:   newID,
		now:     now,
		logger:  logger,
	}
}

// ScheduleAt arms a timer that delivers a firing event at the given time. A
// time already in the past fires immediately.
func (s *Service) ScheduleAt(ctx context.Context, at time.Time, payload trigger.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	id := s.newID()
	s.pending[id] = pending{
		timer:   time.AfterFunc(delay, func() { s.fire(id) }),
		payload: payload,
		at:      at,
	}
	return id, nil
}

// fire sends the event while still holding the mutex: Close flips closed and
// closes the channel under the same lock, so the closed check and the send
// cannot be separated by a Close. The send never blocks.
func (s *Service) fire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok || s.closed {
		return
	}
	delete(s.pending, id)

	select {
	case s.events <- trigger.FiredEvent{AlarmID: p.payload.AlarmID, At: p.at}:
	default:
		// The consumer stalled long enough to fill the buffer. Dropping is
		// safer than blocking a timer goroutine forever.
		s.logger.Warn("dropping notification firing, event buffer full",
			"notification_id", id, "alarm_id", p.payload.AlarmID)
	}
}

// Cancel disarms the pending notification with the given id. Unknown ids are
// a no-op: the timer may have fired already.
func (s *Service) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
	return nil
}

// CancelAll disarms every pending notification.
func (s *Service) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	return nil
}

// Events implements trigger.NotificationCapability.
func (s *Service) Events() <-chan trigger.FiredEvent {
	return s.events
}

// PendingCount reports the number of armed timers.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close disarms everything and closes the event channel. The service cannot
// be reused afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	close(s.events)
}
