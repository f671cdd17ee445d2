package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pomotaro/internal/logfields"
	"pomotaro/internal/metrics"
	"pomotaro/internal/model"
	"pomotaro/internal/notify"
	"pomotaro/internal/presence"
	"pomotaro/internal/repository"
	"pomotaro/internal/stats"
	"pomotaro/internal/timer"
)

// MaxLoggedDuration caps manual and stopwatch entries.
const MaxLoggedDuration = 24 * 60 * 60

// SessionDeps groups the collaborators of SessionService.
type SessionDeps struct {
	History    *repository.HistoryRepository
	Tasks      *TaskService
	Categories *CategoryService
	Settings   *SettingsService
	Notifier   notify.Notifier
	Metrics    metrics.Recorder
	Clock      timer.Clock
	Location   *time.Location
	Logger     *slog.Logger
}

// SessionService drives the pomodoro timer and the stopwatch and records
// finished sessions into the history. It is safe for concurrent use.
type SessionService struct {
	deps SessionDeps

	mu           sync.Mutex
	timer        *timer.Timer
	stopwatch    *timer.Stopwatch
	taskID       string
	taskName     string
	categoryID   string
	categoryName string
}

// NewSessionService loads the settings and restores today's pomodoro count so
// the long break cadence survives restarts.
func NewSessionService(ctx context.Context, deps SessionDeps) (*SessionService, error) {
	if deps.Clock == nil {
		deps.Clock = timer.SystemClock
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	settings, err := deps.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := &SessionService{
		deps:      deps,
		timer:     timer.New(settings, deps.Clock),
		stopwatch: timer.NewStopwatch(deps.Clock),
	}

	history, err := deps.History.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	today := stats.Start(deps.Clock.Now().In(deps.Location), stats.Day)
	_, done := stats.Total(history, stats.Filter{Types: []model.SessionType{model.Pomodoro}, From: today})
	s.timer.SetCompletedPomodoros(done)

	deps.Settings.Subscribe(s.applySettings)
	return s, nil
}

func (s *SessionService) applySettings(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.ApplySettings(settings)
}

// ReloadSettings re-reads the stored settings, picking up changes made by
// another process.
func (s *SessionService) ReloadSettings(ctx context.Context) error {
	settings, err := s.deps.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	s.applySettings(settings)
	return nil
}

func (s *SessionService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Start()
}

func (s *SessionService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Pause()
}

func (s *SessionService) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Toggle()
}

func (s *SessionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Reset()
}

// Switch selects a session type manually; the timer stops.
func (s *SessionService) Switch(st model.SessionType) error {
	if !st.Valid() {
		return fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Switch(st)
	return nil
}

// Skip abandons the current session. Nothing is recorded.
func (s *SessionService) Skip() model.SessionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	skipped := s.timer.Current()
	next := s.timer.Skip()
	s.deps.Metrics.IncSkipped(string(skipped))
	s.deps.Logger.Info("session skipped", logfields.SessionType(string(skipped)))
	return next
}

// Tick advances the timer. When a session finishes it is recorded and the
// completion is returned; otherwise the result is nil.
func (s *SessionService) Tick(ctx context.Context) (*timer.Completion, error) {
	s.mu.Lock()
	c, ok := s.timer.Tick()
	s.deps.Metrics.SetRemaining(s.timer.Remaining())
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	rec := model.SessionRecord{
		ID:           uuid.NewString(),
		Duration:     int(c.Duration / time.Second),
		Timestamp:    c.CompletedAt,
		SessionType:  c.SessionType,
		TaskName:     s.taskName,
		CategoryID:   s.categoryID,
		CategoryName: s.categoryName,
	}
	taskID := s.taskID
	notifications := s.timer.Settings().Notifications
	s.mu.Unlock()

	if err := s.deps.History.Append(ctx, rec); err != nil {
		return &c, fmt.Errorf("record session: %w", err)
	}
	s.deps.Metrics.IncSessionCompleted(string(rec.SessionType))
	if rec.IsFocus() {
		s.deps.Metrics.AddFocusTime(rec.Elapsed())
		if taskID != "" {
			if _, err := s.deps.Tasks.IncrementPomodoro(ctx, taskID); err != nil {
				s.deps.Logger.Warn("failed to count pomodoro for task", logfields.Task(taskID), logfields.Error(err))
			}
		}
	}
	s.deps.Logger.Info("session completed",
		logfields.RecordID(rec.ID),
		logfields.SessionType(string(rec.SessionType)),
		logfields.Duration(rec.Elapsed()),
		logfields.Task(rec.TaskName),
		logfields.Category(rec.CategoryName),
	)

	if notifications && s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, completionEvent(c, rec)); err != nil {
			s.deps.Logger.Warn("notification failed", logfields.Error(err))
		}
	}
	return &c, nil
}

func completionEvent(c timer.Completion, rec model.SessionRecord) notify.Event {
	title := c.SessionType.Label() + " complete"
	var body string
	switch {
	case c.Next.IsBreak():
		body = fmt.Sprintf("Nice work! Time for a %s.", lowerFirst(c.Next.Label()))
	default:
		body = "Break is over. Ready to focus?"
	}
	if rec.IsFocus() && rec.TaskName != "" {
		body = fmt.Sprintf("%s finished on <b>%s</b>. %s", timer.FormatClock(rec.Elapsed()), escapeHTML(rec.TaskName), body)
	}
	return notify.Event{Kind: notify.KindSessionCompleted, Title: title, Body: body}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

// Snapshot returns the current timer state.
func (s *SessionService) Snapshot() timer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Snapshot()
}

// Settings returns the settings the timer currently runs with.
func (s *SessionService) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Settings()
}

// Presence builds the activity for status integrations.
func (s *SessionService) Presence() presence.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return presence.Build(s.timer.Snapshot(), presence.Context{
		TaskName:     s.taskName,
		CategoryName: s.categoryName,
		Enabled:      s.timer.Settings().PresenceEnabled,
	})
}

// SelectTask sets the task that completed pomodoros are attributed to.
// An empty id clears the selection.
func (s *SessionService) SelectTask(ctx context.Context, id string) error {
	name := ""
	if id != "" {
		task, err := s.deps.Tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		name = task.Title
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskID, s.taskName = id, name
	return nil
}

// SelectCategory sets the category of the following sessions. An empty id clears it.
func (s *SessionService) SelectCategory(ctx context.Context, id string) error {
	name := ""
	if id != "" {
		c, err := s.deps.Categories.Get(ctx, id)
		if err != nil {
			return err
		}
		name = c.Name
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryID, s.categoryName = id, name
	return nil
}

// ActiveTask returns the selected task id and title.
func (s *SessionService) ActiveTask() (id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID, s.taskName
}

// ActiveCategory returns the selected category id and name.
func (s *SessionService) ActiveCategory() (id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoryID, s.categoryName
}

// StopwatchToggle starts or pauses the free-running stopwatch.
func (s *SessionService) StopwatchToggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopwatch.Toggle()
}

// StopwatchElapsed returns the time on the stopwatch.
func (s *SessionService) StopwatchElapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopwatch.Elapsed()
}

// StopwatchRunning reports whether the stopwatch is counting.
func (s *SessionService) StopwatchRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopwatch.Running()
}

// StopwatchDiscard resets the stopwatch without recording anything.
func (s *SessionService) StopwatchDiscard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopwatch.Reset()
}

// StopwatchSave records the stopwatch time as a focus session and resets it.
// A rejected run or a failed write leaves the stopwatch with its time.
func (s *SessionService) StopwatchSave(ctx context.Context) (*model.SessionRecord, error) {
	elapsed := s.StopwatchElapsed()
	if elapsed < MinLoggedDuration*time.Second {
		return nil, fmt.Errorf("stopwatch at %s: %w", timer.FormatClock(elapsed), ErrTooShort)
	}
	rec, err := s.LogStopwatch(ctx, elapsed)
	if err != nil {
		return nil, err
	}
	s.StopwatchDiscard()
	return rec, nil
}

// LogStopwatch records a stopwatch run ending now.
func (s *SessionService) LogStopwatch(ctx context.Context, elapsed time.Duration) (*model.SessionRecord, error) {
	return s.logFocus(ctx, elapsed, s.deps.Clock.Now(), "stopwatch")
}

// LogManual records focus time that happened away from the timer. A zero at means now.
func (s *SessionService) LogManual(ctx context.Context, d time.Duration, at time.Time) (*model.SessionRecord, error) {
	now := s.deps.Clock.Now()
	if at.IsZero() {
		at = now
	}
	if at.After(now) {
		return nil, fmt.Errorf("%w: session cannot end in the future", ErrInvalidInput)
	}
	return s.logFocus(ctx, d, at, "manual")
}

func (s *SessionService) logFocus(ctx context.Context, d time.Duration, at time.Time, source string) (*model.SessionRecord, error) {
	secs := int(d / time.Second)
	if secs < MinLoggedDuration {
		return nil, fmt.Errorf("%d seconds: %w", secs, ErrTooShort)
	}
	if secs > MaxLoggedDuration {
		return nil, fmt.Errorf("%w: duration exceeds 24 hours", ErrInvalidInput)
	}

	s.mu.Lock()
	rec := model.SessionRecord{
		ID:           uuid.NewString(),
		Duration:     secs,
		Timestamp:    at,
		SessionType:  model.Pomodoro,
		TaskName:     s.taskName,
		CategoryID:   s.categoryID,
		CategoryName: s.categoryName,
	}
	s.mu.Unlock()

	if err := s.deps.History.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("record %s session: %w", source, err)
	}
	s.deps.Metrics.IncManualLog(source)
	s.deps.Metrics.AddFocusTime(rec.Elapsed())
	s.deps.Logger.Info("focus time logged",
		slog.String("source", source),
		logfields.RecordID(rec.ID),
		logfields.Duration(rec.Elapsed()),
	)
	return &rec, nil
}

// History returns recorded sessions, newest first. A limit of zero returns all.
func (s *SessionService) History(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	records, err := s.deps.History.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.After(records[j].Timestamp) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ClearHistory deletes every recorded session and restarts the cycle count.
func (s *SessionService) ClearHistory(ctx context.Context) error {
	if err := s.deps.History.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.SetCompletedPomodoros(0)
	return nil
}
