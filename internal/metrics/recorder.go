// Package metrics exposes optional counters about study sessions.
package metrics

import "time"

// Recorder receives session lifecycle events. Implementations may forward to
// Prometheus; NoopRecorder is used when metrics are not configured.
type Recorder interface {
	IncSessionCompleted(sessionType string)
	AddFocusTime(d time.Duration)
	IncSkipped(sessionType string)
	IncManualLog(source string)
	SetRemaining(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncSessionCompleted(string) {}
func (NoopRecorder) AddFocusTime(time.Duration) {}
func (NoopRecorder) IncSkipped(string)          {}
func (NoopRecorder) IncManualLog(string)        {}
func (NoopRecorder) SetRemaining(time.Duration) {}
