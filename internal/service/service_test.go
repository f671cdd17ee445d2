package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotaro/internal/backup"
	"pomotaro/internal/model"
	"pomotaro/internal/notify"
	"pomotaro/internal/repository"
	"pomotaro/internal/stats"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	history    *repository.HistoryRepository
	settings   *SettingsService
	tasks      *TaskService
	categories *CategoryService
	stats      *StatsService
	reports    *ReportService
	data       *DataService
	clock      *fakeClock
	events     []notify.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := repository.NewBlobStore(db)
	f := &fixture{
		history:    repository.NewHistoryRepository(store),
		settings:   NewSettingsService(repository.NewSettingsRepository(store)),
		tasks:      NewTaskService(repository.NewTaskRepository(store)),
		categories: NewCategoryService(repository.NewCategoryRepository(store)),
		clock:      &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)},
	}
	f.stats = NewStatsService(f.history, time.UTC)
	f.reports = NewReportService(f.stats, f.tasks, f.settings)
	f.data = NewDataService(f.history, f.tasks, f.categories, f.settings)
	return f
}

func (f *fixture) sessions(t *testing.T) *SessionService {
	t.Helper()
	svc, err := NewSessionService(t.Context(), SessionDeps{
		History:    f.history,
		Tasks:      f.tasks,
		Categories: f.categories,
		Settings:   f.settings,
		Notifier: notify.Func(func(_ context.Context, ev notify.Event) error {
			f.events = append(f.events, ev)
			return nil
		}),
		Clock:    f.clock,
		Location: time.UTC,
	})
	require.NoError(t, err)
	return svc
}

func TestTaskServiceLifecycle(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	_, err := f.tasks.Create(ctx, TaskInput{Title: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)

	essay, err := f.tasks.Create(ctx, TaskInput{Title: " Essay ", EstimatedPomodoros: 3})
	require.NoError(t, err)
	assert.Equal(t, "Essay", essay.Title)
	_, err = f.tasks.Create(ctx, TaskInput{Title: "Flashcards"})
	require.NoError(t, err)

	second, err := f.tasks.Resolve(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Flashcards", second.Title)
	byPrefix, err := f.tasks.Resolve(ctx, essay.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, essay.ID, byPrefix.ID)
	_, err = f.tasks.Resolve(ctx, "3")
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := f.tasks.IncrementPomodoro(ctx, essay.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedPomodoros)
	assert.Equal(t, 2, updated.Remaining())

	_, err = f.tasks.Rename(ctx, essay.ID, "History essay")
	require.NoError(t, err)
	_, err = f.tasks.SetEstimate(ctx, essay.ID, 100)
	require.ErrorIs(t, err, ErrInvalidInput)

	toggled, err := f.tasks.Toggle(ctx, essay.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	active, err := f.tasks.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	removed, err := f.tasks.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, f.tasks.Delete(ctx, second.ID))
	require.ErrorIs(t, f.tasks.Delete(ctx, second.ID), ErrNotFound)
	all, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategoryServiceValidation(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	math, err := f.categories.Create(ctx, CategoryInput{Name: "Math"})
	require.NoError(t, err)
	assert.Equal(t, palette[0], math.Color)

	_, err = f.categories.Create(ctx, CategoryInput{Name: "math"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.categories.Create(ctx, CategoryInput{Name: "Art", Color: "red"})
	require.ErrorIs(t, err, ErrInvalidInput)

	art, err := f.categories.Create(ctx, CategoryInput{Name: "Art", Color: "#AABBCC", Icon: "🎨"})
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", art.Color)

	found, err := f.categories.Resolve(ctx, "ART")
	require.NoError(t, err)
	assert.Equal(t, art.ID, found.ID)

	_, err = f.categories.Update(ctx, art.ID, CategoryInput{Name: "Math"})
	require.ErrorIs(t, err, ErrInvalidInput)
	renamed, err := f.categories.Update(ctx, art.ID, CategoryInput{Name: "Drawing"})
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", renamed.Color)

	require.NoError(t, f.categories.Delete(ctx, math.ID))
	_, err = f.categories.Get(ctx, math.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsServiceNotifiesSubscribers(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	var seen []int
	f.settings.Subscribe(func(s model.Settings) { seen = append(seen, s.PomodoroMinutes) })

	_, err := f.settings.Update(ctx, func(s *model.Settings) { s.PomodoroMinutes = 0 })
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := f.settings.Update(ctx, func(s *model.Settings) { s.PomodoroMinutes = 50 })
	require.NoError(t, err)
	assert.Equal(t, 50, got.PomodoroMinutes)

	reset, err := f.settings.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), reset)
	assert.Equal(t, []int{50, 25}, seen)
}

func TestSessionServiceRecordsCompletedPomodoro(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	task, err := f.tasks.Create(ctx, TaskInput{Title: "Essay", EstimatedPomodoros: 2})
	require.NoError(t, err)
	cat, err := f.categories.Create(ctx, CategoryInput{Name: "History"})
	require.NoError(t, err)
	require.NoError(t, svc.SelectTask(ctx, task.ID))
	require.NoError(t, svc.SelectCategory(ctx, cat.ID))

	svc.Start()
	f.clock.Advance(10 * time.Minute)
	c, err := svc.Tick(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	f.clock.Advance(15 * time.Minute)
	c, err = svc.Tick(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.ShortBreak, c.Next)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.Pomodoro, history[0].SessionType)
	assert.Equal(t, 1500, history[0].Duration)
	assert.Equal(t, "Essay", history[0].TaskName)
	assert.Equal(t, "History", history[0].CategoryName)

	updated, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedPomodoros)

	require.Len(t, f.events, 1)
	assert.Equal(t, notify.KindSessionCompleted, f.events[0].Kind)
	assert.Contains(t, f.events[0].Body, "Essay")
}

func TestSessionServiceSkipRecordsNothing(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	svc.Start()
	f.clock.Advance(5 * time.Minute)
	assert.Equal(t, model.ShortBreak, svc.Skip())

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 0, svc.Snapshot().CompletedPomodoros)
	assert.False(t, svc.Snapshot().Running)
}

func TestSessionServiceNotificationsCanBeDisabled(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	_, err := f.settings.Update(ctx, func(s *model.Settings) {
		s.Notifications = false
		s.PomodoroMinutes = 1
	})
	require.NoError(t, err)
	assert.Equal(t, 60, svc.Snapshot().TotalSeconds)

	svc.Start()
	f.clock.Advance(time.Minute)
	c, err := svc.Tick(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Empty(t, f.events)
}

func TestSessionServiceRestoresTodaysCount(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	require.NoError(t, f.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 1500, Timestamp: f.clock.Now().Add(-2 * time.Hour), SessionType: model.Pomodoro},
		model.SessionRecord{ID: "b", Duration: 1500, Timestamp: f.clock.Now().Add(-time.Hour), SessionType: model.Pomodoro},
		model.SessionRecord{ID: "c", Duration: 300, Timestamp: f.clock.Now().Add(-time.Hour), SessionType: model.ShortBreak},
		model.SessionRecord{ID: "d", Duration: 1500, Timestamp: f.clock.Now().Add(-24 * time.Hour), SessionType: model.Pomodoro},
	))

	svc := f.sessions(t)
	snap := svc.Snapshot()
	assert.Equal(t, 2, snap.CompletedPomodoros)
	assert.Equal(t, 3, snap.Round)

	require.NoError(t, svc.ClearHistory(ctx))
	assert.Equal(t, 0, svc.Snapshot().CompletedPomodoros)
}

func TestSessionServiceManualAndStopwatchLogs(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	_, err := svc.LogManual(ctx, 59*time.Second, time.Time{})
	require.ErrorIs(t, err, ErrTooShort)
	_, err = svc.LogManual(ctx, 30*time.Minute, f.clock.Now().Add(time.Hour))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.LogManual(ctx, 25*time.Hour, time.Time{})
	require.ErrorIs(t, err, ErrInvalidInput)

	rec, err := svc.LogManual(ctx, 45*time.Minute, f.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2700, rec.Duration)
	assert.Equal(t, model.Pomodoro, rec.SessionType)

	svc.StopwatchToggle()
	f.clock.Advance(30 * time.Second)
	_, err = svc.StopwatchSave(ctx)
	require.ErrorIs(t, err, ErrTooShort)
	assert.Equal(t, 30*time.Second, svc.StopwatchElapsed())

	f.clock.Advance(10 * time.Minute)
	rec, err = svc.StopwatchSave(ctx)
	require.NoError(t, err)
	assert.Equal(t, 630, rec.Duration)
	assert.Zero(t, svc.StopwatchElapsed())

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)
}

func TestSessionServiceRejectedStopwatchKeepsItsTime(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	svc.StopwatchToggle()
	f.clock.Advance(25 * time.Hour)
	svc.StopwatchToggle()

	_, err := svc.StopwatchSave(ctx)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 25*time.Hour, svc.StopwatchElapsed())

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSessionServicePresence(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	svc := f.sessions(t)

	cat, err := f.categories.Create(ctx, CategoryInput{Name: "Math"})
	require.NoError(t, err)
	require.NoError(t, svc.SelectCategory(ctx, cat.ID))
	svc.Start()

	a := svc.Presence()
	assert.Equal(t, "Studying Math", a.Details)
	assert.Equal(t, "Pomodoro 1 of 4", a.State)

	_, err = f.settings.Update(ctx, func(s *model.Settings) { s.PresenceEnabled = false })
	require.NoError(t, err)
	assert.Equal(t, "Idle", svc.Presence().State)

	require.ErrorIs(t, svc.SelectTask(ctx, "missing"), ErrNotFound)
}

func TestStatsServiceSeries(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	now := f.clock.Now()
	require.NoError(t, f.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 1500, Timestamp: now, SessionType: model.Pomodoro},
		model.SessionRecord{ID: "b", Duration: 1500, Timestamp: now.AddDate(0, 0, -2), SessionType: model.Pomodoro},
		model.SessionRecord{ID: "c", Duration: 1500, Timestamp: now.AddDate(0, 0, -10), SessionType: model.Pomodoro},
	))

	series, err := f.stats.Series(ctx, stats.Day, 7, stats.FocusOnly(), now)
	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2026-10-12", series[0].Key)
	assert.Equal(t, 1500, series[4].Seconds)
	assert.Equal(t, 1500, series[6].Seconds)

	weeks, err := f.stats.Series(ctx, stats.Week, 2, stats.FocusOnly(), now)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, 1500, weeks[0].Seconds)
	assert.Equal(t, 3000, weeks[1].Seconds)

	achievements, err := f.stats.Achievements(ctx)
	require.NoError(t, err)
	assert.True(t, achievements[0].Unlocked)
}

func TestReportServiceEscapesHTML(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	now := f.clock.Now()
	_, err := f.tasks.Create(ctx, TaskInput{Title: "Read <Dune>", EstimatedPomodoros: 4})
	require.NoError(t, err)
	require.NoError(t, f.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 3600, Timestamp: now, SessionType: model.Pomodoro, CategoryID: "ab", CategoryName: "A&B"},
	))

	text, err := f.reports.DailySummary(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, text, "Focused: <b>1h 00m</b> in 1 pomodoros")
	assert.Contains(t, text, "Goal: 50% of 2h 00m")
	assert.Contains(t, text, "Read &lt;Dune&gt; (0/4 🍅)")
	assert.Contains(t, text, "A&amp;B: 1h 00m")
}

func TestDataServiceRoundTrip(t *testing.T) {
	ctx := t.Context()
	src := newFixture(t)
	_, err := src.tasks.Create(ctx, TaskInput{Title: "Essay"})
	require.NoError(t, err)
	_, err = src.categories.Create(ctx, CategoryInput{Name: "Math"})
	require.NoError(t, err)
	_, err = src.settings.Update(ctx, func(s *model.Settings) { s.LongBreakInterval = 3 })
	require.NoError(t, err)
	require.NoError(t, src.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 1500, Timestamp: src.clock.Now(), SessionType: model.Pomodoro},
	))

	var buf bytes.Buffer
	require.NoError(t, src.data.Export(ctx, &buf, backup.YAML))

	dst := newFixture(t)
	require.NoError(t, dst.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 1500, Timestamp: src.clock.Now(), SessionType: model.Pomodoro},
		model.SessionRecord{ID: "z", Duration: 600, Timestamp: src.clock.Now(), SessionType: model.Pomodoro},
	))
	res, err := dst.data.Import(ctx, bytes.NewReader(buf.Bytes()), backup.YAML)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{HistoryAdded: 0, Tasks: 1, Categories: 1}, res)

	settings, err := dst.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, settings.LongBreakInterval)
	history, err := dst.history.List(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = dst.data.Import(ctx, strings.NewReader(`{"version": 99}`), backup.JSON)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDataServiceRejectsBadDocumentWithoutWriting(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	_, err := f.tasks.Create(ctx, TaskInput{Title: "Essay"})
	require.NoError(t, err)
	require.NoError(t, f.history.Append(ctx,
		model.SessionRecord{ID: "a", Duration: 1500, Timestamp: f.clock.Now(), SessionType: model.Pomodoro},
	))

	docs := map[string]string{
		"duplicate category": `{"version":1,
			"history":[{"id":"b","duration":600,"timestamp":"2026-10-18T08:00:00Z","sessionType":"pomodoro"}],
			"tasks":[{"id":"t1","title":"Imported"}],
			"categories":[{"id":"c1","name":"Math","color":"#112233"},{"id":"c2","name":"math","color":"#445566"}]}`,
		"bad color": `{"version":1,
			"history":[{"id":"b","duration":600,"timestamp":"2026-10-18T08:00:00Z","sessionType":"pomodoro"}],
			"categories":[{"id":"c1","name":"Math","color":"red"}]}`,
		"empty task title": `{"version":1,
			"history":[{"id":"b","duration":600,"timestamp":"2026-10-18T08:00:00Z","sessionType":"pomodoro"}],
			"tasks":[{"id":"t1","title":"  "}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := f.data.Import(ctx, strings.NewReader(doc), backup.JSON)
			require.ErrorIs(t, err, ErrInvalidInput)

			history, err := f.history.List(ctx)
			require.NoError(t, err)
			assert.Len(t, history, 1)
			tasks, err := f.tasks.List(ctx)
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, "Essay", tasks[0].Title)
			categories, err := f.categories.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, categories)
		})
	}
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("21:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 21 * * *", spec)

	for _, bad := range []string{"25:00", "12:60", "noon", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerRegistersDailyReport(t *testing.T) {
	f := newFixture(t)
	sched := NewSchedulerService(time.UTC, nil)
	id, err := sched.ScheduleDailyReport("21:00", f.reports, notify.LogNotifier{})
	require.NoError(t, err)
	sched.Start()
	defer sched.Stop()

	next := sched.NextRun(id)
	require.False(t, next.IsZero())
	assert.Equal(t, 21, next.Hour())
	assert.Equal(t, 0, next.Minute())
}
