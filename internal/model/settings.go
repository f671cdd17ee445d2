package model

import (
	"fmt"
	"time"
)

// Settings holds timer durations, cycle behaviour and UI toggles.
type Settings struct {
	PomodoroMinutes    int  `json:"pomodoro" yaml:"pomodoro"`
	ShortBreakMinutes  int  `json:"shortBreak" yaml:"shortBreak"`
	LongBreakMinutes   int  `json:"longBreak" yaml:"longBreak"`
	AutoStartBreaks    bool `json:"autoStartBreaks" yaml:"autoStartBreaks"`
	AutoStartPomodoros bool `json:"autoStartPomodoros" yaml:"autoStartPomodoros"`
	LongBreakInterval  int  `json:"longBreakInterval" yaml:"longBreakInterval"`
	DailyGoalMinutes   int  `json:"dailyGoalMinutes" yaml:"dailyGoalMinutes"`

	AlwaysOnTop     bool `json:"alwaysOnTop" yaml:"alwaysOnTop"`
	CompactMode     bool `json:"compactMode" yaml:"compactMode"`
	ShowProgress    bool `json:"showProgress" yaml:"showProgress"`
	PresenceEnabled bool `json:"presenceEnabled" yaml:"presenceEnabled"`
	Notifications   bool `json:"notifications" yaml:"notifications"`
	Sound           bool `json:"sound" yaml:"sound"`
}

// DefaultSettings returns the classic 25/5/15 cycle with a long break every fourth pomodoro.
func DefaultSettings() Settings {
	return Settings{
		PomodoroMinutes:   25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		LongBreakInterval: 4,
		DailyGoalMinutes:  120,
		ShowProgress:      true,
		PresenceEnabled:   true,
		Notifications:     true,
		Sound:             true,
	}
}

// Duration returns the configured length of the given session type.
func (s Settings) Duration(t SessionType) time.Duration {
	switch t {
	case ShortBreak:
		return time.Duration(s.ShortBreakMinutes) * time.Minute
	case LongBreak:
		return time.Duration(s.LongBreakMinutes) * time.Minute
	default:
		return time.Duration(s.PomodoroMinutes) * time.Minute
	}
}

// Normalized replaces out-of-range numeric fields with their defaults.
// Fields missing from a stored blob are filled in by the repository loader.
func (s Settings) Normalized() Settings {
	def := DefaultSettings()
	if !inRange(s.PomodoroMinutes, 1, 180) {
		s.PomodoroMinutes = def.PomodoroMinutes
	}
	if !inRange(s.ShortBreakMinutes, 1, 60) {
		s.ShortBreakMinutes = def.ShortBreakMinutes
	}
	if !inRange(s.LongBreakMinutes, 1, 60) {
		s.LongBreakMinutes = def.LongBreakMinutes
	}
	if !inRange(s.LongBreakInterval, 1, 12) {
		s.LongBreakInterval = def.LongBreakInterval
	}
	if !inRange(s.DailyGoalMinutes, 0, 1440) {
		s.DailyGoalMinutes = def.DailyGoalMinutes
	}
	return s
}

// Validate checks user supplied settings.
func (s Settings) Validate() error {
	switch {
	case !inRange(s.PomodoroMinutes, 1, 180):
		return fmt.Errorf("pomodoro must be between 1 and 180 minutes, got %d", s.PomodoroMinutes)
	case !inRange(s.ShortBreakMinutes, 1, 60):
		return fmt.Errorf("short break must be between 1 and 60 minutes, got %d", s.ShortBreakMinutes)
	case !inRange(s.LongBreakMinutes, 1, 60):
		return fmt.Errorf("long break must be between 1 and 60 minutes, got %d", s.LongBreakMinutes)
	case !inRange(s.LongBreakInterval, 1, 12):
		return fmt.Errorf("long break interval must be between 1 and 12, got %d", s.LongBreakInterval)
	case !inRange(s.DailyGoalMinutes, 0, 1440):
		return fmt.Errorf("daily goal must be between 0 and 1440 minutes, got %d", s.DailyGoalMinutes)
	}
	return nil
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
