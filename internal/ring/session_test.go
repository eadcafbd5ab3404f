package ring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/alarmd/internal/alarm"
)

type soundStub struct {
	mu       sync.Mutex
	loadErr  error
	playErr  error
	stopErr  error
	loads    int
	plays    int
	stops    int
	unloads  int
}

func (s *soundStub) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.loadErr
}

func (s *soundStub) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	return s.playErr
}

func (s *soundStub) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return s.stopErr
}

func (s *soundStub) Unload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloads++
	return nil
}

func (s *soundStub) counts() (loads, plays, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.plays, s.stops
}

type hapticsStub struct {
	mu       sync.Mutex
	pulseErr error
	pulses   int
}

func (h *hapticsStub) Pulse(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pulses++
	return h.pulseErr
}

func (h *hapticsStub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pulses
}

func testAlarm(id string) alarm.Alarm {
	return alarm.Alarm{ID: id, Label: "wake up", Enabled: true}
}

func TestSessionStartStop(t *testing.T) {
	ctx := context.Background()
	sound := &soundStub{}
	haptics := &hapticsStub{}
	session := NewSession(sound, haptics, time.Hour, nil)

	if err := session.Start(ctx, testAlarm("a-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.State() != StateRinging {
		t.Fatalf("state = %v, want ringing", session.State())
	}

	current, ok := session.Current()
	if !ok || current.ID != "a-1" {
		t.Fatalf("Current = %+v, %v; want a-1", current, ok)
	}

	loads, plays, _ := sound.counts()
	if loads != 1 || plays != 1 {
		t.Fatalf("loads=%d plays=%d, want 1/1", loads, plays)
	}
	if haptics.count() == 0 {
		t.Fatal("expected an immediate haptic pulse on entry")
	}

	stopped, ok := session.Stop(ctx)
	if !ok || stopped.ID != "a-1" {
		t.Fatalf("Stop = %+v, %v; want a-1", stopped, ok)
	}
	if session.State() != StateIdle {
		t.Fatalf("state = %v, want idle", session.State())
	}
	if _, _, stops := sound.counts(); stops != 1 {
		t.Fatalf("stops = %d, want 1", stops)
	}
}

func TestSessionSecondFiringIsRejected(t *testing.T) {
	ctx := context.Background()
	session := NewSession(&soundStub{}, &hapticsStub{}, time.Hour, nil)

	if err := session.Start(ctx, testAlarm("a-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.Start(ctx, testAlarm("a-2")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for the overlapping firing, got %v", err)
	}

	// The first session keeps ringing.
	current, ok := session.Current()
	if !ok || current.ID != "a-1" {
		t.Fatalf("Current = %+v, %v; want a-1", current, ok)
	}
}

func TestSessionStartupFailuresDoNotWedge(t *testing.T) {
	ctx := context.Background()
	sound := &soundStub{loadErr: errors.New("asset missing"), playErr: errors.New("no audio device")}
	haptics := &hapticsStub{pulseErr: errors.New("no motor")}
	session := NewSession(sound, haptics, time.Hour, nil)

	if err := session.Start(ctx, testAlarm("a-1")); err != nil {
		t.Fatalf("startup failures must not abort entry, got %v", err)
	}
	if session.State() != StateRinging {
		t.Fatal("session must reach ringing despite startup failures")
	}

	if _, ok := session.Stop(ctx); !ok {
		t.Fatal("dismiss must still work after startup failures")
	}
	if session.State() != StateIdle {
		t.Fatal("session must reach idle")
	}
}

func TestSessionStopFailuresStillReachIdle(t *testing.T) {
	ctx := context.Background()
	sound := &soundStub{stopErr: errors.New("player detached")}
	session := NewSession(sound, &hapticsStub{}, time.Hour, nil)

	if err := session.Start(ctx, testAlarm("a-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := session.Stop(ctx); !ok {
		t.Fatal("expected Stop to report the ringing alarm")
	}
	if session.State() != StateIdle {
		t.Fatal("Stop must reach idle even when the sound stop call fails")
	}
}

func TestSessionStopWhenIdle(t *testing.T) {
	session := NewSession(&soundStub{}, &hapticsStub{}, time.Hour, nil)

	if _, ok := session.Stop(context.Background()); ok {
		t.Fatal("Stop on an idle session must report no alarm")
	}
}

func TestSessionHapticPulseRepeats(t *testing.T) {
	ctx := context.Background()
	haptics := &hapticsStub{}
	session := NewSession(&soundStub{}, haptics, 5*time.Millisecond, nil)

	if err := session.Start(ctx, testAlarm("a-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for haptics.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated pulses, got %d", haptics.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	session.Stop(ctx)
	settled := haptics.count()
	time.Sleep(30 * time.Millisecond)
	// One tick may already be in flight while Stop runs, never more.
	if haptics.count() > settled+1 {
		t.Fatalf("pulses continued after stop: %d -> %d", settled, haptics.count())
	}
}
