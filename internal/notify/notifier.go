// Package notify delivers session events (completed pomodoros, daily reports)
// to the user through one or more channels.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// Kind classifies an event.
type Kind string

const (
	KindSessionCompleted Kind = "session_completed"
	KindDailyReport      Kind = "daily_report"
)

// Event is a message for the user. Body may contain simple HTML markup.
type Event struct {
	Kind  Kind
	Title string
	Body  string
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev Event) error {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info(ev.Title, "kind", string(ev.Kind))
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
