package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/alarmd/internal/persistence"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "alarms.db")
	storage, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func TestAlarmRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	loaded, err := storage.LoadAlarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded, "fresh database starts empty")

	alarms := []persistence.Alarm{
		{
			ID:        "weekday-alarm",
			Time:      time.Date(2024, time.March, 4, 7, 30, 0, 0, time.UTC),
			Label:     "standup",
			Days:      []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			Enabled:   true,
			CreatedAt: time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "one-shot",
			Time:      time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC),
			Label:     "",
			Enabled:   false,
			CreatedAt: time.Date(2024, time.February, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, storage.SaveAlarms(ctx, alarms))

	loaded, err = storage.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "weekday-alarm", loaded[0].ID)
	assert.Equal(t, "standup", loaded[0].Label)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, loaded[0].Days)
	assert.True(t, loaded[0].Enabled)
	assert.True(t, loaded[0].Time.Equal(alarms[0].Time))
	assert.True(t, loaded[0].CreatedAt.Equal(alarms[0].CreatedAt))

	assert.Equal(t, "one-shot", loaded[1].ID)
	assert.Empty(t, loaded[1].Days)
	assert.False(t, loaded[1].Enabled)
}

func TestSaveAlarmsPreservesCallerOrder(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	// Deliberately not sorted by id or time: the repository must not resort.
	alarms := []persistence.Alarm{
		{ID: "c", Time: time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC), CreatedAt: time.Now().UTC()},
		{ID: "a", Time: time.Date(2024, time.March, 7, 7, 0, 0, 0, time.UTC), CreatedAt: time.Now().UTC()},
		{ID: "b", Time: time.Date(2024, time.March, 8, 8, 0, 0, 0, time.UTC), CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, storage.SaveAlarms(ctx, alarms))

	loaded, err := storage.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "c", loaded[0].ID)
	assert.Equal(t, "a", loaded[1].ID)
	assert.Equal(t, "b", loaded[2].ID)
}

func TestSaveAlarmsReplacesPreviousCollection(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	first := []persistence.Alarm{
		{ID: "old-1", Time: time.Now().UTC(), CreatedAt: time.Now().UTC()},
		{ID: "old-2", Time: time.Now().UTC(), CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, storage.SaveAlarms(ctx, first))

	second := []persistence.Alarm{
		{ID: "new-1", Time: time.Now().UTC(), CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, storage.SaveAlarms(ctx, second))

	loaded, err := storage.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new-1", loaded[0].ID)
}

func TestLoadAlarmsAfterReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "alarms.db")

	storage, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(ctx))
	require.NoError(t, storage.SaveAlarms(ctx, []persistence.Alarm{
		{ID: "persisted", Time: time.Now().UTC(), CreatedAt: time.Now().UTC(), Enabled: true},
	}))
	require.NoError(t, storage.Close())

	reopened, err := Open(dsn)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(ctx))

	loaded, err := reopened.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "persisted", loaded[0].ID)
	assert.True(t, loaded[0].Enabled)
}
