package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotaro/internal/model"
	"pomotaro/internal/timer"
)

func TestBuildRunningPomodoro(t *testing.T) {
	end := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	snap := timer.Snapshot{
		SessionType:        model.Pomodoro,
		Remaining:          12*time.Minute + 34*time.Second,
		Total:              25 * time.Minute,
		Running:            true,
		Round:              2,
		Interval:           4,
		CompletedPomodoros: 1,
		EndAt:              &end,
	}
	a := Build(snap, Context{Enabled: true, TaskName: "Essay", CategoryName: "History"})

	assert.Equal(t, "Essay (History)", a.Details)
	assert.Equal(t, "Pomodoro 2 of 4", a.State)
	assert.Equal(t, "12:34", a.Clock)
	require.NotNil(t, a.Start)
	assert.True(t, a.Start.Equal(end.Add(-25*time.Minute)))
	assert.Equal(t, "🍅 12:34 · Pomodoro 2 of 4 · Essay (History)", a.Title())
}

func TestBuildPausedAndBreaks(t *testing.T) {
	paused := Build(timer.Snapshot{SessionType: model.Pomodoro, Remaining: 5 * time.Minute}, Context{Enabled: true, CategoryName: "Math"})
	assert.Equal(t, "Paused · 05:00 left", paused.State)
	assert.Equal(t, "Studying Math", paused.Details)
	assert.Nil(t, paused.End)

	brk := Build(timer.Snapshot{SessionType: model.LongBreak, Remaining: time.Minute, Running: true}, Context{Enabled: true})
	assert.Equal(t, "Long break", brk.State)
	assert.Equal(t, "Taking a long break", brk.Details)
	assert.Equal(t, "🌴", brk.Icon)
}

func TestBuildDisabled(t *testing.T) {
	a := Build(timer.Snapshot{SessionType: model.Pomodoro, Running: true}, Context{})
	assert.Equal(t, Idle(), a)
	assert.Equal(t, "Pomotaro", a.Title())
}
