// Package timer implements the pomodoro session state machine.
//
// The countdown is derived from a wall-clock end timestamp rather than from
// counting ticks, so a slow or suspended caller never makes the timer drift.
package timer

import (
	"fmt"
	"time"

	"pomotaro/internal/model"
)

// Clock abstracts the wall clock for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// Completion describes a session that ran to zero.
type Completion struct {
	SessionType model.SessionType
	Duration    time.Duration
	CompletedAt time.Time
	Next        model.SessionType
	AutoStarted bool
}

// Snapshot is a read-only view of the timer state.
type Snapshot struct {
	SessionType        model.SessionType `json:"sessionType"`
	Remaining          time.Duration     `json:"-"`
	RemainingSeconds   int               `json:"remainingSeconds"`
	Total              time.Duration     `json:"-"`
	TotalSeconds       int               `json:"totalSeconds"`
	Running            bool              `json:"running"`
	Progress           float64           `json:"progress"`
	Round              int               `json:"round"`
	Interval           int               `json:"interval"`
	CompletedPomodoros int               `json:"completedPomodoros"`
	EndAt              *time.Time        `json:"endAt,omitempty"`
}

// Timer cycles through pomodoro, short break and long break sessions.
// It is not safe for concurrent use.
type Timer struct {
	settings  model.Settings
	clock     Clock
	current   model.SessionType
	total     time.Duration
	remaining time.Duration
	endAt     time.Time
	running   bool
	completed int
}

// New returns an idle timer loaded with a full pomodoro.
func New(settings model.Settings, clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	t := &Timer{settings: settings.Normalized(), clock: clock}
	t.load(model.Pomodoro)
	return t
}

// Start begins or resumes the countdown.
func (t *Timer) Start() {
	if t.running {
		return
	}
	if t.remaining <= 0 {
		t.remaining = t.total
	}
	t.endAt = t.clock.Now().Add(t.remaining)
	t.running = true
}

// Pause freezes the countdown at the current remaining time.
func (t *Timer) Pause() {
	if !t.running {
		return
	}
	t.remaining = t.untilEnd()
	t.running = false
	t.endAt = time.Time{}
}

// Toggle starts a paused timer or pauses a running one.
func (t *Timer) Toggle() {
	if t.running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset stops the timer and reloads the full duration of the current session.
func (t *Timer) Reset() {
	t.load(t.current)
}

// Switch stops the timer and selects a session type manually.
func (t *Timer) Switch(st model.SessionType) {
	if !st.Valid() {
		return
	}
	t.load(st)
}

// Skip abandons the current session without completing it. A skipped
// pomodoro does not count toward the long break interval.
func (t *Timer) Skip() model.SessionType {
	next := model.Pomodoro
	if t.current == model.Pomodoro {
		next = model.ShortBreak
	}
	t.load(next)
	return next
}

// Tick refreshes the countdown and reports a completion when it reaches zero.
// After a long suspension only one session completes; the next one starts from now.
func (t *Timer) Tick() (Completion, bool) {
	if !t.running {
		return Completion{}, false
	}
	left := t.untilEnd()
	if left > 0 {
		t.remaining = left
		return Completion{}, false
	}

	c := Completion{
		SessionType: t.current,
		Duration:    t.total,
		CompletedAt: t.endAt,
	}
	if t.current == model.Pomodoro {
		t.completed++
	}
	c.Next = t.nextAfter(t.current)
	t.load(c.Next)

	if (c.Next.IsBreak() && t.settings.AutoStartBreaks) || (c.Next == model.Pomodoro && t.settings.AutoStartPomodoros) {
		t.Start()
		c.AutoStarted = true
	}
	return c, true
}

// ApplySettings swaps in new settings. An idle session that has not been
// started yet is reloaded with the new duration; a session already under way
// keeps its length until it ends.
func (t *Timer) ApplySettings(s model.Settings) {
	untouched := !t.running && t.remaining == t.total
	t.settings = s.Normalized()
	if untouched {
		t.load(t.current)
	}
}

// Settings returns the settings currently in effect.
func (t *Timer) Settings() model.Settings { return t.settings }

// Current returns the active session type.
func (t *Timer) Current() model.SessionType { return t.current }

// Running reports whether the countdown is active.
func (t *Timer) Running() bool { return t.running }

// Remaining returns the time left in the current session.
func (t *Timer) Remaining() time.Duration {
	if t.running {
		return t.untilEnd()
	}
	return t.remaining
}

// CompletedPomodoros returns the number of pomodoros finished since the timer was created.
func (t *Timer) CompletedPomodoros() int { return t.completed }

// SetCompletedPomodoros restores the cycle position, e.g. from today's history.
func (t *Timer) SetCompletedPomodoros(n int) {
	if n < 0 {
		n = 0
	}
	t.completed = n
}

// Snapshot captures the current state for rendering and the status API.
func (t *Timer) Snapshot() Snapshot {
	total := t.total
	left := t.Remaining()
	progress := 0.0
	if total > 0 {
		progress = float64(total-left) / float64(total)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	s := Snapshot{
		SessionType:        t.current,
		Remaining:          left,
		RemainingSeconds:   ceilSeconds(left),
		Total:              total,
		TotalSeconds:       ceilSeconds(total),
		Running:            t.running,
		Progress:           progress,
		Round:              t.completed%t.settings.LongBreakInterval + 1,
		Interval:           t.settings.LongBreakInterval,
		CompletedPomodoros: t.completed,
	}
	if t.running {
		end := t.endAt
		s.EndAt = &end
	}
	return s
}

func (t *Timer) nextAfter(st model.SessionType) model.SessionType {
	if st != model.Pomodoro {
		return model.Pomodoro
	}
	if t.completed > 0 && t.completed%t.settings.LongBreakInterval == 0 {
		return model.LongBreak
	}
	return model.ShortBreak
}

func (t *Timer) load(st model.SessionType) {
	t.current = st
	t.total = t.settings.Duration(st)
	t.remaining = t.total
	t.running = false
	t.endAt = time.Time{}
}

func (t *Timer) untilEnd() time.Duration {
	left := t.endAt.Sub(t.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// ceilSeconds rounds up so a display never shows 00:00 while time is left.
func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// FormatClock renders d as MM:SS, or H:MM:SS past an hour.
func FormatClock(d time.Duration) string {
	secs := ceilSeconds(d)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
