package localnotify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/alarmd/internal/trigger"
)

func newTestService() *Service {
	return New(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestScheduleDeliversEvent(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	defer service.Close()

	at := time.Now().Add(10 * time.Millisecond)
	id, err := service.ScheduleAt(ctx, at, trigger.Payload{AlarmID: "a-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a notification id")
	}

	select {
	case event := <-service.Events():
		if event.AlarmID != "a-1" {
			t.Fatalf("event alarm id = %q, want a-1", event.AlarmID)
		}
		if !event.At.Equal(at) {
			t.Fatalf("event time = %v, want %v", event.At, at)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the firing event")
	}

	if service.PendingCount() != 0 {
		t.Fatalf("pending = %d after firing, want 0", service.PendingCount())
	}
}

func TestSchedulePastTimeFiresImmediately(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	defer service.Close()

	if _, err := service.ScheduleAt(ctx, time.Now().Add(-time.Minute), trigger.Payload{AlarmID: "a-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case event := <-service.Events():
		if event.AlarmID != "a-1" {
			t.Fatalf("event alarm id = %q", event.AlarmID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("a past fire time must deliver immediately")
	}
}

func TestCancelPreventsDelivery(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	defer service.Close()

	id, err := service.ScheduleAt(ctx, time.Now().Add(20*time.Millisecond), trigger.Payload{AlarmID: "a-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Cancel(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case event := <-service.Events():
		t.Fatalf("cancelled notification fired: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}

	// Cancelling an id that already left the pending set is a no-op.
	if err := service.Cancel(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancelAllDisarmsEverything(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	defer service.Close()

	for i := 0; i < 3; i++ {
		if _, err := service.ScheduleAt(ctx, time.Now().Add(time.Hour), trigger.Payload{AlarmID: "a-1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if service.PendingCount() != 3 {
		t.Fatalf("pending = %d, want 3", service.PendingCount())
	}

	if err := service.CancelAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.PendingCount() != 0 {
		t.Fatalf("pending = %d after CancelAll, want 0", service.PendingCount())
	}
}

func TestCloseRacingImmediateFirings(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	// Past fire times arm timers whose callbacks run right away, racing the
	// Close below. A firing that loses the race must return quietly instead
	// of sending on the closed channel.
	for i := 0; i < 64; i++ {
		if _, err := service.ScheduleAt(ctx, time.Now().Add(-time.Second), trigger.Payload{AlarmID: "a-1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	service.Close()

	// Events delivered before the close drain from the closed channel.
	for range service.Events() {
	}
	if service.PendingCount() != 0 {
		t.Fatalf("pending = %d after close, want 0", service.PendingCount())
	}
}

func TestScheduleAfterCloseFails(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	service.Close()

	if _, err := service.ScheduleAt(ctx, time.Now().Add(time.Hour), trigger.Payload{AlarmID: "a-1"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	// Close is idempotent.
	service.Close()
}
