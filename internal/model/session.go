package model

import "time"

// SessionType identifies the phase of the pomodoro cycle.
type SessionType string

const (
	Pomodoro   SessionType = "pomodoro"
	ShortBreak SessionType = "shortBreak"
	LongBreak  SessionType = "longBreak"
)

// SessionTypes lists every session type in cycle order.
var SessionTypes = []SessionType{Pomodoro, ShortBreak, LongBreak}

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case Pomodoro, ShortBreak, LongBreak:
		return true
	}
	return false
}

// IsBreak reports whether t is a short or long break.
func (t SessionType) IsBreak() bool {
	return t == ShortBreak || t == LongBreak
}

// Label is the human readable name of the session type.
func (t SessionType) Label() string {
	switch t {
	case Pomodoro:
		return "Pomodoro"
	case ShortBreak:
		return "Short break"
	case LongBreak:
		return "Long break"
	default:
		return string(t)
	}
}

// SessionRecord is one completed session in the append-only history.
type SessionRecord struct {
	ID           string      `json:"id" yaml:"id"`
	Duration     int         `json:"duration" yaml:"duration"` // seconds
	Timestamp    time.Time   `json:"timestamp" yaml:"timestamp"`
	SessionType  SessionType `json:"sessionType" yaml:"sessionType"`
	TaskName     string      `json:"taskName,omitempty" yaml:"taskName,omitempty"`
	CategoryID   string      `json:"categoryId,omitempty" yaml:"categoryId,omitempty"`
	CategoryName string      `json:"categoryName,omitempty" yaml:"categoryName,omitempty"`
}

// Elapsed returns the recorded duration as a time.Duration.
func (r SessionRecord) Elapsed() time.Duration {
	return time.Duration(r.Duration) * time.Second
}

// IsFocus reports whether the record counts as study time.
func (r SessionRecord) IsFocus() bool {
	return r.SessionType == Pomodoro
}
