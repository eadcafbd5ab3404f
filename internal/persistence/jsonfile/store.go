// Package jsonfile persists the alarm collection as a single JSON document,
// a whole-file read and rewrite on every change.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/alarmd/internal/persistence"
)

// Store reads and writes the alarm list at a fixed file path.
type Store struct {
	path string
}

// New returns a store rooted at path. The file is created on first save.
func New(path string) *Store {
	return &Store{path: path}
}

type alarmDocument struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Label     string    `json:"label"`
	Days      []int     `json:"days"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoadAlarms returns the stored collection, or an empty one when the file
// does not exist yet.
func (s *Store) LoadAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", persistence.ErrStorage, s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var documents []alarmDocument
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", persistence.ErrStorage, s.path, err)
	}

	alarms := make([]persistence.Alarm, 0, len(documents))
	for _, doc := range documents {
		days := make([]time.Weekday, 0, len(doc.Days))
		for _, day := range doc.Days {
			days = append(days, time.Weekday(day))
		}
		if len(days) == 0 {
			days = nil
		}
		alarms = append(alarms, persistence.Alarm{
			ID:        doc.ID,
			Time:      doc.Time,
			Label:     doc.Label,
			Days:      days,
			Enabled:   doc.Enabled,
			CreatedAt: doc.CreatedAt,
		})
	}
	return alarms, nil
}

// SaveAlarms writes the collection verbatim, creating the directory when
// needed.
func (s *Store) SaveAlarms(ctx context.Context, alarms []persistence.Alarm) error {
	documents := make([]alarmDocument, 0, len(alarms))
	for _, record := range alarms {
		days := make([]int, 0, len(record.Days))
		for _, day := range record.Days {
			days = append(days, int(day))
		}
		documents = append(documents, alarmDocument{
			ID:        record.ID,
			Time:      record.Time,
			Label:     record.Label,
			Days:      days,
			Enabled:   record.Enabled,
			CreatedAt: record.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode alarms: %v", persistence.ErrStorage, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", persistence.ErrStorage, dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", persistence.ErrStorage, s.path, err)
	}
	return nil
}
