package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDuration(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 25*time.Minute, s.Duration(Pomodoro))
	assert.Equal(t, 5*time.Minute, s.Duration(ShortBreak))
	assert.Equal(t, 15*time.Minute, s.Duration(LongBreak))
}

func TestSettingsNormalized(t *testing.T) {
	s := Settings{PomodoroMinutes: 50, LongBreakInterval: 0, ShortBreakMinutes: -3, DailyGoalMinutes: 2000}
	got := s.Normalized()
	assert.Equal(t, 50, got.PomodoroMinutes)
	assert.Equal(t, 5, got.ShortBreakMinutes)
	assert.Equal(t, 15, got.LongBreakMinutes)
	assert.Equal(t, 4, got.LongBreakInterval)
	assert.Equal(t, 120, got.DailyGoalMinutes)
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero pomodoro", func(s *Settings) { s.PomodoroMinutes = 0 }},
		{"huge pomodoro", func(s *Settings) { s.PomodoroMinutes = 181 }},
		{"long short break", func(s *Settings) { s.ShortBreakMinutes = 61 }},
		{"zero long break", func(s *Settings) { s.LongBreakMinutes = 0 }},
		{"interval too big", func(s *Settings) { s.LongBreakInterval = 13 }},
		{"negative goal", func(s *Settings) { s.DailyGoalMinutes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSessionTypeHelpers(t *testing.T) {
	assert.True(t, ShortBreak.IsBreak())
	assert.False(t, Pomodoro.IsBreak())
	assert.False(t, SessionType("nap").Valid())
	assert.Equal(t, "Long break", LongBreak.Label())

	task := Task{EstimatedPomodoros: 3, CompletedPomodoros: 5}
	assert.Equal(t, 0, task.Remaining())
}
