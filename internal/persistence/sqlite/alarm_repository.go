package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/alarmd/internal/persistence"
)

// LoadAlarms returns the stored alarm collection in its persisted order.
func (s *Storage) LoadAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	const query = `
		SELECT id, fire_time, label, days, enabled, created_at
		FROM alarms
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query alarms: %v", persistence.ErrStorage, err)
	}
	defer rows.Close()

	var alarms []persistence.Alarm
	for rows.Next() {
		var (
			record    persistence.Alarm
			fireTime  string
			days      string
			enabled   int
			createdAt string
		)
		if err := rows.Scan(&record.ID, &fireTime, &record.Label, &days, &enabled, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan alarm row: %v", persistence.ErrStorage, err)
		}

		if record.Time, err = time.Parse(time.RFC3339Nano, fireTime); err != nil {
			return nil, fmt.Errorf("%w: invalid fire_time for alarm %s: %v", persistence.ErrStorage, record.ID, err)
		}
		if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("%w: invalid created_at for alarm %s: %v", persistence.ErrStorage, record.ID, err)
		}
		if record.Days, err = decodeDays(days); err != nil {
			return nil, fmt.Errorf("%w: invalid days for alarm %s: %v", persistence.ErrStorage, record.ID, err)
		}
		record.Enabled = enabled != 0

		alarms = append(alarms, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate alarms: %v", persistence.ErrStorage, err)
	}

	return alarms, nil
}

// SaveAlarms replaces the stored collection with the supplied one, keeping
// its order.
func (s *Storage) SaveAlarms(ctx context.Context, alarms []persistence.Alarm) error {
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM alarms`); err != nil {
			return fmt.Errorf("failed to clear alarms: %w", err)
		}

		const insert = `
			INSERT INTO alarms (id, position, fire_time, label, days, enabled, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		for position, record := range alarms {
			enabled := 0
			if record.Enabled {
				enabled = 1
			}
			_, err := tx.ExecContext(ctx, insert,
				record.ID,
				position,
				record.Time.Format(time.RFC3339Nano),
				record.Label,
				encodeDays(record.Days),
				enabled,
				record.CreatedAt.Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("failed to insert alarm %s: %w", record.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrStorage, err)
	}
	return nil
}

func encodeDays(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(int(day)))
	}
	return strings.Join(parts, ",")
}

func decodeDays(encoded string) ([]time.Weekday, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("weekday %q is not numeric", part)
		}
		days = append(days, time.Weekday(value))
	}
	return days, nil
}
