// Package presence formats the "what am I doing" status shown in rich
// presence integrations, window titles and status bars.
package presence

import (
	"fmt"
	"strings"
	"time"

	"pomotaro/internal/model"
	"pomotaro/internal/timer"
)

const appName = "Pomotaro"

// Activity is the presence payload. Start/End are set only while a session runs.
type Activity struct {
	Details   string     `json:"details"`
	State     string     `json:"state"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	LargeText string     `json:"largeText"`
	SmallText string     `json:"smallText"`
	Icon      string     `json:"icon"`
	Clock     string     `json:"clock"`
}

// Context carries what the user is working on.
type Context struct {
	TaskName     string
	CategoryName string
	Enabled      bool
}

// Idle is shown when presence is disabled.
func Idle() Activity {
	return Activity{Details: appName, State: "Idle", LargeText: appName, Icon: "⏸"}
}

// Build derives an activity from the timer snapshot.
func Build(snap timer.Snapshot, ctx Context) Activity {
	if !ctx.Enabled {
		return Idle()
	}

	a := Activity{
		LargeText: appName,
		Icon:      icon(snap.SessionType),
		Clock:     timer.FormatClock(snap.Remaining),
		Details:   details(snap.SessionType, ctx),
	}

	switch {
	case snap.SessionType == model.Pomodoro && snap.Running:
		a.State = fmt.Sprintf("Pomodoro %d of %d", snap.Round, snap.Interval)
	case snap.Running:
		a.State = snap.SessionType.Label()
	default:
		a.State = fmt.Sprintf("Paused · %s left", a.Clock)
	}
	a.SmallText = fmt.Sprintf("%d pomodoros completed", snap.CompletedPomodoros)

	if snap.Running && snap.EndAt != nil {
		end := *snap.EndAt
		start := end.Add(-snap.Total)
		a.Start = &start
		a.End = &end
	}
	return a
}

// Title renders the activity as a one line window title.
func (a Activity) Title() string {
	if a.Clock == "" {
		return appName
	}
	parts := []string{a.Icon + " " + a.Clock, a.State}
	if a.Details != "" && a.Details != appName {
		parts = append(parts, a.Details)
	}
	return strings.Join(parts, " · ")
}

func details(st model.SessionType, ctx Context) string {
	if st.IsBreak() {
		return "Taking a " + strings.ToLower(st.Label())
	}
	task := strings.TrimSpace(ctx.TaskName)
	cat := strings.TrimSpace(ctx.CategoryName)
	switch {
	case task != "" && cat != "":
		return fmt.Sprintf("%s (%s)", task, cat)
	case task != "":
		return "Working on " + task
	case cat != "":
		return "Studying " + cat
	default:
		return "Focusing"
	}
}

func icon(st model.SessionType) string {
	switch st {
	case model.ShortBreak:
		return "☕"
	case model.LongBreak:
		return "🌴"
	default:
		return "🍅"
	}
}
