package testfixtures

import (
	"context"
	"sync"
)

// FakeSound is a ring.SoundPlayer that counts calls.
type FakeSound struct {
	mu      sync.Mutex
	LoadErr error
	PlayErr error
	StopErr error
	loads   int
	plays   int
	stops   int
	unloads int
}

func (f *FakeSound) Load(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.LoadErr
}

func (f *FakeSound) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return f.PlayErr
}

func (f *FakeSound) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.StopErr
}

func (f *FakeSound) Unload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
	return nil
}

// Counts reports the number of Load, Play and Stop calls seen so far.
func (f *FakeSound) Counts() (loads, plays, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.plays, f.stops
}

// FakeHaptics is a ring.Haptics that counts pulses.
type FakeHaptics struct {
	mu       sync.Mutex
	PulseErr error
	pulses   int
}

func (f *FakeHaptics) Pulse(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulses++
	return f.PulseErr
}

// Pulses reports how many pulses were requested.
func (f *FakeHaptics) Pulses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulses
}
