package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/alarmd/internal/persistence"
)

func TestLoadAlarmsMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.json"))

	alarms, err := store.LoadAlarms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "alarms.json")
	store := New(path)

	alarms := []persistence.Alarm{
		{
			ID:        "a-1",
			Time:      time.Date(2024, time.March, 4, 7, 30, 0, 0, time.UTC),
			Label:     "wake up",
			Days:      []time.Weekday{time.Monday, time.Friday},
			Enabled:   true,
			CreatedAt: time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        "a-2",
			Time:      time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC),
			Enabled:   false,
			CreatedAt: time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.SaveAlarms(ctx, alarms))

	loaded, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "a-1", loaded[0].ID)
	assert.Equal(t, "wake up", loaded[0].Label)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, loaded[0].Days)
	assert.True(t, loaded[0].Time.Equal(alarms[0].Time))

	assert.Equal(t, "a-2", loaded[1].ID)
	assert.Nil(t, loaded[1].Days)
	assert.False(t, loaded[1].Enabled)
}

func TestLoadAlarmsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarms.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path).LoadAlarms(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrStorage)
}

func TestSaveAlarmsOverwrites(t *testing.T) {
	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "alarms.json"))

	require.NoError(t, store.SaveAlarms(ctx, []persistence.Alarm{{ID: "old"}}))
	require.NoError(t, store.SaveAlarms(ctx, []persistence.Alarm{{ID: "new"}}))

	loaded, err := store.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].ID)
}
