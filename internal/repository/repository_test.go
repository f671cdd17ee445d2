package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotaro/internal/model"
)

func newTestStore(t *testing.T) *BlobStore {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewBlobStore(db)
}

func TestBlobStorePutGetDelete(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "a", `{"x":1}`))
	require.NoError(t, store.Put(ctx, "a", `{"x":2}`))
	require.NoError(t, store.Put(ctx, "b", `[]`))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"x":2}`, got)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsRepositoryFallsBackOnCorruptBlob(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)
	repo := NewSettingsRepository(store)

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)

	require.NoError(t, store.Put(ctx, KeySettings, "{not json"))
	s, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)

	custom := model.DefaultSettings()
	custom.PomodoroMinutes = 50
	custom.AutoStartBreaks = true
	require.NoError(t, repo.Save(ctx, custom))
	s, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, s)
}

func TestSettingsRepositoryNormalizesPartialBlob(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)
	require.NoError(t, store.Put(ctx, KeySettings, `{"pomodoro":45}`))

	s, err := NewSettingsRepository(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, s.PomodoroMinutes)
	assert.Equal(t, 5, s.ShortBreakMinutes)
	assert.Equal(t, 4, s.LongBreakInterval)
	assert.Equal(t, 120, s.DailyGoalMinutes)
	assert.True(t, s.ShowProgress)
	assert.True(t, s.PresenceEnabled)
	assert.True(t, s.Notifications)
	assert.True(t, s.Sound)
	assert.False(t, s.AutoStartBreaks)
}

func TestSettingsRepositoryKeepsStoredFalseFlags(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)
	require.NoError(t, store.Put(ctx, KeySettings, `{"pomodoro":30,"sound":false}`))

	s, err := NewSettingsRepository(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, s.PomodoroMinutes)
	assert.False(t, s.Sound)
	assert.True(t, s.Notifications)
}

func TestHistoryRepositoryAppendOnly(t *testing.T) {
	ctx := t.Context()
	repo := NewHistoryRepository(newTestStore(t))
	ts := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, model.SessionRecord{ID: "1", Duration: 1500, Timestamp: ts, SessionType: model.Pomodoro}))
	require.NoError(t, repo.Append(ctx, model.SessionRecord{ID: "2", Duration: 300, Timestamp: ts.Add(time.Hour), SessionType: model.ShortBreak}))

	err := repo.Append(ctx, model.SessionRecord{ID: "1", Duration: 10})
	require.Error(t, err)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.True(t, records[0].Timestamp.Equal(ts))
	assert.Equal(t, model.ShortBreak, records[1].SessionType)

	require.NoError(t, repo.Clear(ctx))
	records, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTaskAndCategoryRepositories(t *testing.T) {
	ctx := t.Context()
	store := newTestStore(t)
	tasks := NewTaskRepository(store)
	cats := NewCategoryRepository(store)

	list, err := tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, tasks.Save(ctx, []model.Task{{ID: "t1", Title: "Read chapter 3", EstimatedPomodoros: 2}}))
	require.NoError(t, cats.Save(ctx, []model.Category{{ID: "c1", Name: "Math", Color: "#ff0000"}}))

	list, err = tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Read chapter 3", list[0].Title)

	categories, err := cats.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Math", categories[0].Name)
}

func TestNewDBCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "nested", "pomotaro.db")
	db, err := NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.DirExists(t, filepath.Join(dir, "nested"))
}
