// Package store owns the authoritative, persisted alarm collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/alarmd/internal/alarm"
	"github.com/example/alarmd/internal/persistence"
)

// ErrNotFound is returned when the requested alarm id does not exist.
var ErrNotFound = errors.New("store: alarm not found")

// Store keeps the alarm collection in memory and writes through to the
// persistence repository on every successful mutation.
type Store struct {
	mu          sync.Mutex
	repo        persistence.Repository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	alarms []alarm.Alarm
}

// New wires a store with the default uuid id generator and wall clock.
func New(repo persistence.Repository) *Store {
	return NewWithOptions(repo, nil, nil, nil)
}

// NewWithOptions wires a store with injectable id generation, clock and
// logger; nil values select the defaults.
func NewWithOptions(repo persistence.Repository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:        repo,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// CreateParams describes a new alarm. The clock time is anchored to today's
// date at creation; the date component only matters until a one-time alarm
// fires.
type CreateParams struct {
	Hour    int
	Minute  int
	Label   string
	Days    []time.Weekday
	Enabled bool
}

// UpdateParams replaces the mutable fields of an existing alarm.
type UpdateParams struct {
	Hour    int
	Minute  int
	Label   string
	Days    []time.Weekday
	Enabled bool
}

// Load primes the in-memory collection from persistence. A load failure at
// startup degrades to an empty collection; it is logged, never fatal.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.LoadAlarms(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load alarms, starting empty", "error", err)
		s.alarms = nil
		return nil
	}

	alarms := make([]alarm.Alarm, 0, len(records))
	for _, record := range records {
		alarms = append(alarms, fromRecord(record))
	}
	s.alarms = alarms
	return nil
}

// Create validates, stores and persists a new alarm definition.
func (s *Store) Create(ctx context.Context, params CreateParams) (alarm.Alarm, error) {
	if err := validateParams(params.Hour, params.Minute, params.Label, params.Days); err != nil {
		return alarm.Alarm{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a := alarm.Alarm{
		ID:        s.idGenerator(),
		Time:      anchorClockTime(now, params.Hour, params.Minute),
		Label:     params.Label,
		Days:      alarm.NormalizeDays(params.Days),
		Enabled:   params.Enabled,
		CreatedAt: now,
	}

	s.alarms = append(s.alarms, a)
	if err := s.persistLocked(ctx); err != nil {
		s.alarms = s.alarms[:len(s.alarms)-1]
		return alarm.Alarm{}, err
	}
	return a.Clone(), nil
}

// Get returns the alarm with the given id.
func (s *Store) Get(ctx context.Context, id string) (alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return alarm.Alarm{}, ErrNotFound
	}
	return s.alarms[index].Clone(), nil
}

// List returns the collection in its persisted order.
func (s *Store) List(ctx context.Context) ([]alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]alarm.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		out = append(out, a.Clone())
	}
	return out, nil
}

// Update replaces the mutable fields of the alarm with the given id. ID and
// CreatedAt are immutable.
func (s *Store) Update(ctx context.Context, id string, params UpdateParams) (alarm.Alarm, error) {
	if err := validateParams(params.Hour, params.Minute, params.Label, params.Days); err != nil {
		return alarm.Alarm{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return alarm.Alarm{}, ErrNotFound
	}

	previous := s.alarms[index]
	updated := previous.Clone()
	updated.Time = anchorClockTime(s.now(), params.Hour, params.Minute)
	updated.Label = params.Label
	updated.Days = alarm.NormalizeDays(params.Days)
	updated.Enabled = params.Enabled

	s.alarms[index] = updated
	if err := s.persistLocked(ctx); err != nil {
		s.alarms[index] = previous
		return alarm.Alarm{}, err
	}
	return updated.Clone(), nil
}

// Toggle flips the enabled flag of the alarm with the given id.
func (s *Store) Toggle(ctx context.Context, id string) (alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return alarm.Alarm{}, ErrNotFound
	}

	previous := s.alarms[index]
	updated := previous.Clone()
	updated.Enabled = !updated.Enabled

	s.alarms[index] = updated
	if err := s.persistLocked(ctx); err != nil {
		s.alarms[index] = previous
		return alarm.Alarm{}, err
	}
	return updated.Clone(), nil
}

// Delete removes the alarm with the given id, failing with ErrNotFound for
// unknown ids.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return ErrNotFound
	}

	previous := s.alarms
	remaining := make([]alarm.Alarm, 0, len(s.alarms)-1)
	remaining = append(remaining, s.alarms[:index]...)
	remaining = append(remaining, s.alarms[index+1:]...)

	s.alarms = remaining
	if err := s.persistLocked(ctx); err != nil {
		s.alarms = previous
		return err
	}
	return nil
}

// ReplaceAll persists the supplied collection verbatim, in the caller's
// order. The store does not resort; ordering is the caller's contract.
func (s *Store) ReplaceAll(ctx context.Context, alarms []alarm.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.alarms
	replacement := make([]alarm.Alarm, 0, len(alarms))
	for _, a := range alarms {
		replacement = append(replacement, a.Clone())
	}

	s.alarms = replacement
	if err := s.persistLocked(ctx); err != nil {
		s.alarms = previous
		return err
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, a := range s.alarms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	records := make([]persistence.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		records = append(records, toRecord(a))
	}
	if err := s.repo.SaveAlarms(ctx, records); err != nil {
		return fmt.Errorf("failed to persist alarms: %w", err)
	}
	return nil
}

func validateParams(hour, minute int, label string, days []time.Weekday) error {
	if err := alarm.Validate(label, days); err != nil {
		return err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		vErr := &alarm.ValidationError{FieldErrors: map[string]string{
			"time": "hour must be 0-23 and minute 0-59",
		}}
		return vErr
	}
	return nil
}

// anchorClockTime places a clock time on today's date in now's location.
func anchorClockTime(now time.Time, hour, minute int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}

func toRecord(a alarm.Alarm) persistence.Alarm {
	return persistence.Alarm{
		ID:        a.ID,
		Time:      a.Time,
		Label:     a.Label,
		Days:      append([]time.Weekday(nil), a.Days...),
		Enabled:   a.Enabled,
		CreatedAt: a.CreatedAt,
	}
}

func fromRecord(record persistence.Alarm) alarm.Alarm {
	return alarm.Alarm{
		ID:        record.ID,
		Time:      record.Time,
		Label:     record.Label,
		Days:      alarm.NormalizeDays(record.Days),
		Enabled:   record.Enabled,
		CreatedAt: record.CreatedAt,
	}
}
