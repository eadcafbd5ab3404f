package trigger

import "sync"

// Registry is the in-memory mapping from alarm id to its active trigger
// handle. It is intentionally not persisted: on cold start it is empty and
// repopulated by the reconciliation pass.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Set records the active handle for an alarm id, replacing any previous one.
func (r *Registry) Set(alarmID string, handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[alarmID] = handle
}

// Get returns the active handle for an alarm id.
func (r *Registry) Get(alarmID string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.handles[alarmID]
	return handle, ok
}

// Remove deletes and returns the handle for an alarm id.
func (r *Registry) Remove(alarmID string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.handles[alarmID]
	if ok {
		delete(r.handles, alarmID)
	}
	return handle, ok
}

// Snapshot returns a copy of the current mapping.
func (r *Registry) Snapshot() map[string]Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Handle, len(r.handles))
	for id, handle := range r.handles {
		out[id] = handle
	}
	return out
}

// Len reports the number of registered handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
