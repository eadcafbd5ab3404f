package testfixtures

import (
	"context"
	"sync"

	"github.com/example/alarmd/internal/trigger"
)

// FakeSystemAlarms is a trigger.SystemAlarmCapability with scriptable
// availability and result codes.
type FakeSystemAlarms struct {
	mu        sync.Mutex
	available bool
	result    trigger.SystemAlarmResult
	setErr    error
	requests  []trigger.SystemAlarmRequest
	showCalls int
}

// NewFakeSystemAlarms returns a capability that reports the given
// availability and answers SetAlarm with ResultSuccess.
func NewFakeSystemAlarms(available bool) *FakeSystemAlarms {
	return &FakeSystemAlarms{
		available: available,
		result:    trigger.SystemAlarmResult{Code: trigger.ResultSuccess},
	}
}

// Respond primes the result returned by subsequent SetAlarm calls.
func (f *FakeSystemAlarms) Respond(result trigger.SystemAlarmResult, err error) {
	f.mu.Lock()
	f.result = result
	f.setErr = err
	f.mu.Unlock()
}

// Available implements trigger.SystemAlarmCapability.
func (f *FakeSystemAlarms) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

// SetAlarm implements trigger.SystemAlarmCapability.
func (f *FakeSystemAlarms) SetAlarm(ctx context.Context, req trigger.SystemAlarmRequest) (trigger.SystemAlarmResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.setErr
}

// ShowAlarms implements trigger.SystemAlarmCapability.
func (f *FakeSystemAlarms) ShowAlarms(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showCalls++
	return nil
}

// Requests returns every SetAlarm request seen so far.
func (f *FakeSystemAlarms) Requests() []trigger.SystemAlarmRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]trigger.SystemAlarmRequest(nil), f.requests...)
}
