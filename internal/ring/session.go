// Package ring drives the triggered-alarm experience: looping sound and a
// repeating haptic pulse, running until the user dismisses or snoozes.
package ring

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/example/alarmd/internal/alarm"
)

// DefaultHapticInterval is the spacing between haptic pulses while ringing.
const DefaultHapticInterval = 2 * time.Second

// ErrBusy is returned when a firing arrives while another alarm is already
// ringing. The first session wins; the caller drops the second firing.
var ErrBusy = errors.New("ring: a session is already ringing")

// State enumerates the session's lifecycle states.
type State int

const (
	// StateIdle means no alarm is sounding.
	StateIdle State = iota
	// StateRinging means an alarm is actively sounding and pulsing.
	StateRinging
)

// String returns a stable label for logging.
func (s State) String() string {
	if s == StateRinging {
		return "ringing"
	}
	return "idle"
}

// SoundPlayer abstracts the looping alarm sound asset.
type SoundPlayer interface {
	Load(ctx context.Context) error
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
	Unload(ctx context.Context) error
}

// Haptics emits a single heavy pulse; the session owns the repetition.
type Haptics interface {
	Pulse(ctx context.Context) error
}

// Session is the state machine that runs while an alarm is sounding. At most
// one alarm rings at a time. Audio and haptic failures never wedge the
// machine: entry proceeds and Stop always reaches Idle.
type Session struct {
	mu        sync.Mutex
	state     State
	current   alarm.Alarm
	loaded    bool
	stopPulse chan struct{}

	sound    SoundPlayer
	haptics  Haptics
	interval time.Duration
	logger   *slog.Logger
}

// NewSession wires a session. interval <= 0 selects DefaultHapticInterval.
func NewSession(sound SoundPlayer, haptics Haptics, interval time.Duration, logger *slog.Logger) *Session {
	if interval <= 0 {
		interval = DefaultHapticInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		sound:    sound,
		haptics:  haptics,
		interval: interval,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the alarm that is ringing, when one is.
func (s *Session) Current() (alarm.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRinging {
		return alarm.Alarm{}, false
	}
	return s.current.Clone(), true
}

// Start transitions Idle -> Ringing for the given alarm, starting looping
// playback and the haptic pulse. A second firing while ringing returns
// ErrBusy. Sound or haptic startup failures are logged and do not prevent
// the transition; a later Stop still works.
func (s *Session) Start(ctx context.Context, a alarm.Alarm) error {
	s.mu.Lock()
	if s.state == StateRinging {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateRinging
	s.current = a.Clone()
	stop := make(chan struct{})
	s.stopPulse = stop
	needLoad := !s.loaded
	s.mu.Unlock()

	if s.sound != nil {
		if needLoad {
			if err := s.sound.Load(ctx); err != nil {
				s.logger.WarnContext(ctx, "failed to load alarm sound", "alarm_id", a.ID, "error", err)
			} else {
				s.mu.Lock()
				s.loaded = true
				s.mu.Unlock()
			}
		}
		if err := s.sound.Play(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to start alarm sound", "alarm_id", a.ID, "error", err)
		}
	}

	if s.haptics != nil {
		if err := s.haptics.Pulse(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to emit haptic pulse", "alarm_id", a.ID, "error", err)
		}
		go s.pulseLoop(stop, a.ID)
	}

	s.logger.InfoContext(ctx, "alarm ringing", "alarm_id", a.ID, "label", a.Label)
	return nil
}

// pulseLoop repeats haptic pulses until the session stops.
func (s *Session) pulseLoop(stop <-chan struct{}, alarmID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.haptics.Pulse(context.Background()); err != nil {
				s.logger.Warn("failed to emit haptic pulse", "alarm_id", alarmID, "error", err)
			}
		}
	}
}

// Stop transitions Ringing -> Idle, halting sound and haptics. It always
// reaches Idle, even when the underlying stop calls fail; those failures are
// logged. The stopped alarm is returned so the caller can snooze it.
func (s *Session) Stop(ctx context.Context) (alarm.Alarm, bool) {
	s.mu.Lock()
	if s.state != StateRinging {
		s.mu.Unlock()
		return alarm.Alarm{}, false
	}
	stopped := s.current
	s.state = StateIdle
	s.current = alarm.Alarm{}
	if s.stopPulse != nil {
		close(s.stopPulse)
		s.stopPulse = nil
	}
	s.mu.Unlock()

	if s.sound != nil {
		if err := s.sound.Stop(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to stop alarm sound", "alarm_id", stopped.ID, "error", err)
		}
	}

	return stopped, true
}

// Close stops any active session and releases the sound asset.
func (s *Session) Close(ctx context.Context) {
	s.Stop(ctx)

	s.mu.Lock()
	loaded := s.loaded
	s.loaded = false
	s.mu.Unlock()

	if loaded && s.sound != nil {
		if err := s.sound.Unload(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to unload alarm sound", "error", err)
		}
	}
}
