package persistence

import (
	"context"
	"errors"
	"time"
)

// ErrStorage is wrapped by repository implementations when the underlying
// I/O fails.
var ErrStorage = errors.New("persistence: storage failure")

// Alarm is the stored representation of an alarm definition.
type Alarm struct {
	ID        string
	Time      time.Time
	Label     string
	Days      []time.Weekday
	Enabled   bool
	CreatedAt time.Time
}

// Repository persists the authoritative alarm collection as a whole ordered
// document. SaveAlarms replaces the stored collection with the supplied one,
// preserving its order verbatim; LoadAlarms returns it in that order.
type Repository interface {
	LoadAlarms(ctx context.Context) ([]Alarm, error)
	SaveAlarms(ctx context.Context, alarms []Alarm) error
}
