package testfixtures

import (
	"context"
	"sync"

	"github.com/example/alarmd/internal/persistence"
)

// MemoryRepository is an in-memory persistence.Repository. It records every
// save so tests can assert on write-through behaviour, and can be primed to
// fail on demand.
type MemoryRepository struct {
	mu      sync.Mutex
	alarms  []persistence.Alarm
	saves   [][]persistence.Alarm
	loadErr error
	saveErr error
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Seed replaces the stored records without counting as a save.
func (r *MemoryRepository) Seed(alarms []persistence.Alarm) {
	r.mu.Lock()
	r.alarms = append([]persistence.Alarm(nil), alarms...)
	r.mu.Unlock()
}

// FailLoads makes subsequent LoadAlarms calls return err.
func (r *MemoryRepository) FailLoads(err error) {
	r.mu.Lock()
	r.loadErr = err
	r.mu.Unlock()
}

// FailSaves makes subsequent SaveAlarms calls return err.
func (r *MemoryRepository) FailSaves(err error) {
	r.mu.Lock()
	r.saveErr = err
	r.mu.Unlock()
}

// LoadAlarms implements persistence.Repository.
func (r *MemoryRepository) LoadAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]persistence.Alarm(nil), r.alarms...), nil
}

// SaveAlarms implements persistence.Repository.
func (r *MemoryRepository) SaveAlarms(ctx context.Context, alarms []persistence.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	snapshot := append([]persistence.Alarm(nil), alarms...)
	r.alarms = snapshot
	r.saves = append(r.saves, snapshot)
	return nil
}

// Stored returns the records the repository currently holds.
func (r *MemoryRepository) Stored() []persistence.Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]persistence.Alarm(nil), r.alarms...)
}

// SaveCount reports how many times SaveAlarms succeeded.
func (r *MemoryRepository) SaveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}
