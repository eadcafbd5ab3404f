// Package console provides terminal-backed ringing devices: the alarm sound
// becomes the terminal bell and haptic pulses become log lines.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Bell plays the alarm by writing the terminal bell character.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBell returns a bell writing to out.
func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

// Load implements ring.SoundPlayer. There is no asset to prepare.
func (b *Bell) Load(ctx context.Context) error { return nil }

// Play implements ring.SoundPlayer.
func (b *Bell) Play(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := fmt.Fprint(b.out, "\a"); err != nil {
		return fmt.Errorf("failed to ring terminal bell: %w", err)
	}
	return nil
}

// Stop implements ring.SoundPlayer. The bell is not a looping asset.
func (b *Bell) Stop(ctx context.Context) error { return nil }

// Unload implements ring.SoundPlayer.
func (b *Bell) Unload(ctx context.Context) error { return nil }

// Haptics reports each pulse as a log line.
type Haptics struct {
	logger *slog.Logger
}

// NewHaptics returns log-backed haptics.
func NewHaptics(logger *slog.Logger) *Haptics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Haptics{logger: logger}
}

// Pulse implements ring.Haptics.
func (h *Haptics) Pulse(ctx context.Context) error {
	h.logger.InfoContext(ctx, "haptic pulse")
	return nil
}
