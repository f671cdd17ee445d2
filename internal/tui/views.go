package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pomotaro/internal/model"
	"pomotaro/internal/stats"
	"pomotaro/internal/timer"
)

func (m Model) View() string {
	if m.compact {
		return m.compactView()
	}

	var body string
	switch m.view {
	case ViewStopwatch:
		body = m.stopwatchView()
	case ViewTasks:
		body = m.tasksView()
	case ViewStats:
		body = m.statsView()
	case ViewCalendar:
		body = m.calendarView()
	case ViewSettings:
		body = m.settingsView()
	default:
		body = m.timerView()
	}

	sections := []string{m.headerView(), PanelStyle.Render(body)}
	if line := m.statusLine(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if View(i) == m.view {
			tabs[i] = ActiveTabStyle.Render(label)
		} else {
			tabs[i] = TabStyle.Render(label)
		}
	}
	title := HeaderStyle.Render("🍅 Pomotaro")
	if m.data.settings.AlwaysOnTop {
		title += MutedStyle.Render(" 📌")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, ""))
}

func (m Model) statusLine() string {
	if m.err != nil {
		return ErrorStyle.Render(" ✗ " + m.err.Error())
	}
	if m.status != "" {
		return StatusStyle.Render(m.status)
	}
	return ""
}

// compactView is a single line suited to a small floating terminal.
func (m Model) compactView() string {
	snap := m.svc.Sessions.Snapshot()
	state := "⏸"
	if snap.Running {
		state = "▶"
	}
	label := lipgloss.NewStyle().Foreground(sessionColor(snap.SessionType)).Render(snap.SessionType.Label())
	parts := []string{
		state,
		ClockStyle.Render(timer.FormatClock(snap.Remaining)),
		label,
		MutedStyle.Render(fmt.Sprintf("%d/%d", snap.Round, snap.Interval)),
	}
	if _, title := m.svc.Sessions.ActiveTask(); title != "" {
		parts = append(parts, shorten(title, 24))
	}
	return strings.Join(parts, " ")
}

func (m Model) timerView() string {
	snap := m.svc.Sessions.Snapshot()
	accent := lipgloss.NewStyle().Foreground(sessionColor(snap.SessionType)).Bold(true)

	lines := []string{
		accent.Render(strings.ToUpper(snap.SessionType.Label())),
		"",
		ClockStyle.Render(timer.FormatClock(snap.Remaining)),
		"",
	}
	if m.data.settings.ShowProgress {
		lines = append(lines, m.bar.ViewAs(snap.Progress), "")
	}

	state := "paused"
	if snap.Running {
		state = "running"
	}
	lines = append(lines, fmt.Sprintf("%s  %s", roundDots(snap), MutedStyle.Render(state)))

	_, task := m.svc.Sessions.ActiveTask()
	_, category := m.svc.Sessions.ActiveCategory()
	if task == "" {
		task = MutedStyle.Render("none (pick one in Tasks)")
	}
	if category == "" {
		category = MutedStyle.Render("none (press C)")
	}
	lines = append(lines, "", "Task:     "+task, "Category: "+category)

	goal := m.data.settings.DailyGoalMinutes
	progress := stats.GoalProgress(m.data.summary.TodaySeconds, goal)
	lines = append(lines, "",
		fmt.Sprintf("Today %s of %dm goal", stats.FormatDuration(m.data.summary.TodaySeconds), goal),
		m.bar.ViewAs(progress),
	)
	return strings.Join(lines, "\n")
}

// roundDots renders the position in the long-break cycle, e.g. ●●○○.
func roundDots(snap timer.Snapshot) string {
	if snap.Interval <= 0 {
		return ""
	}
	done := (snap.Round - 1) % snap.Interval
	if snap.SessionType == model.LongBreak {
		done = snap.Interval
	}
	var b strings.Builder
	for i := 0; i < snap.Interval; i++ {
		if i < done {
			b.WriteString(ActiveStyle.Render("●"))
		} else {
			b.WriteString(MutedStyle.Render("○"))
		}
	}
	return b.String()
}

func (m Model) stopwatchView() string {
	elapsed := m.svc.Sessions.StopwatchElapsed()
	state := "stopped"
	if m.svc.Sessions.StopwatchRunning() {
		state = "running"
	}
	lines := []string{
		LabelStyle.Render("STOPWATCH"),
		"",
		ClockStyle.Render(formatElapsed(elapsed)),
		MutedStyle.Render(state),
		"",
	}
	if _, category := m.svc.Sessions.ActiveCategory(); category != "" {
		lines = append(lines, "Category: "+category)
	}
	lines = append(lines, MutedStyle.Render("space start/stop · w save as focus time · backspace discard"))
	return strings.Join(lines, "\n")
}

func formatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

func (m Model) tasksView() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("TASKS"))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if len(m.data.tasks) == 0 {
		b.WriteString(MutedStyle.Render("No tasks yet. Press a to add one."))
		return b.String()
	}

	activeID, _ := m.svc.Sessions.ActiveTask()
	for i, t := range m.data.tasks {
		cursor := "  "
		if i == m.taskCursor {
			cursor = CursorStyle.Render("▸ ")
		}
		check := "[ ]"
		title := t.Title
		if t.Completed {
			check = "[x]"
			title = DoneStyle.Render(title)
		} else if t.ID == activeID {
			title = ActiveStyle.Render(title + " ◀")
		}
		count := fmt.Sprintf("%d", t.CompletedPomodoros)
		if t.EstimatedPomodoros > 0 {
			count = fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.EstimatedPomodoros)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, check, title, MutedStyle.Render(count+" 🍅"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statsView() string {
	s := m.data.summary
	var b strings.Builder
	b.WriteString(LabelStyle.Render("STATISTICS"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Today   %-9s Week  %-9s Month %s\n",
		stats.FormatDuration(s.TodaySeconds), stats.FormatDuration(s.WeekSeconds), stats.FormatDuration(s.MonthSeconds))
	fmt.Fprintf(&b, "Year    %-9s Total %-9s Avg   %s/day\n",
		stats.FormatDuration(s.YearSeconds), stats.FormatDuration(s.TotalSeconds), stats.FormatDuration(s.AverageDailySeconds))
	fmt.Fprintf(&b, "Streak  %d days (best %d)   %d sessions\n\n", s.CurrentStreak, s.LongestStreak, s.TotalSessions)

	b.WriteString(MutedStyle.Render(fmt.Sprintf("◀ by %s ▶", m.granularity)))
	b.WriteString("\n")
	b.WriteString(seriesChart(m.data.series, m.granularity, 24))

	if len(m.data.byCategory) > 0 {
		b.WriteString("\n\n")
		b.WriteString(LabelStyle.Render("BY CATEGORY"))
		b.WriteString("\n")
		for _, c := range m.data.byCategory {
			fmt.Fprintf(&b, "%-16s %s %s\n", shorten(c.Name, 16), hbar(c.Share, 16), stats.FormatDuration(c.Seconds))
		}
	}

	if len(m.data.achievements) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("ACHIEVEMENTS"))
		b.WriteString("\n")
		for _, a := range m.data.achievements {
			if a.Unlocked {
				fmt.Fprintf(&b, "🏆 %s %s\n", a.Name, MutedStyle.Render(a.Subtitle))
			} else {
				fmt.Fprintf(&b, "%s\n", MutedStyle.Render("🔒 "+a.Name+" "+a.Subtitle))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// seriesChart draws one horizontal bar per bucket, scaled to the largest.
func seriesChart(series []stats.Bucket, g stats.Granularity, width int) string {
	if len(series) == 0 {
		return MutedStyle.Render("no data")
	}
	peak := 0
	for _, b := range series {
		peak = max(peak, b.Seconds)
	}
	lines := make([]string, len(series))
	for i, bucket := range series {
		share := 0.0
		if peak > 0 {
			share = float64(bucket.Seconds) / float64(peak)
		}
		lines[i] = fmt.Sprintf("%-8s %s %s", bucketLabel(bucket, g), hbar(share, width), stats.FormatDuration(bucket.Seconds))
	}
	return strings.Join(lines, "\n")
}

func bucketLabel(b stats.Bucket, g stats.Granularity) string {
	switch g {
	case stats.Day:
		return b.Start.Format("Mon 02")
	case stats.Week:
		return b.Start.Format("Jan 02")
	case stats.Month:
		return b.Start.Format("Jan 06")
	default:
		return b.Start.Format("2006")
	}
}

func hbar(share float64, width int) string {
	filled := int(share*float64(width) + 0.5)
	filled = clamp(filled, 0, width)
	return BarStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) calendarView() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("◀ " + m.calMonth.Format("January 2006") + " ▶"))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("Mo Tu We Th Fr Sa Su"))
	b.WriteString("\n")

	total := 0
	for _, week := range m.data.calendar {
		cells := make([]string, len(week))
		for i, day := range week {
			if !day.InMonth {
				cells[i] = "  "
				continue
			}
			total += day.Seconds
			style := lipgloss.NewStyle().Foreground(ColorFg)
			if day.Level > 0 {
				style = style.Background(heatColors[clamp(day.Level, 0, len(heatColors)-1)])
			}
			cells[i] = style.Render(fmt.Sprintf("%2d", day.Date.Day()))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(legend())
	fmt.Fprintf(&b, "\n\nMonth total: %s", stats.FormatDuration(total))
	return b.String()
}

func legend() string {
	cells := make([]string, len(heatColors))
	for i, c := range heatColors {
		cells[i] = lipgloss.NewStyle().Background(c).Render("  ")
	}
	return MutedStyle.Render("less ") + strings.Join(cells, " ") + MutedStyle.Render(" more")
}

func (m Model) settingsView() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("SETTINGS"))
	b.WriteString("\n\n")
	for i, f := range settingFields {
		cursor := "  "
		label := f.label
		if i == m.settingCursor {
			cursor = CursorStyle.Render("▸ ")
			label = ActiveStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%-24s ◀ %s ▶\n", cursor, label, f.value(m.data.settings))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("←/→ change · enter toggle"))
	return b.String()
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
