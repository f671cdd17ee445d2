package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"pomotaro/internal/stats"
)

// ReportService builds human-readable summaries for daily notifications.
type ReportService struct {
	stats    *StatsService
	tasks    *TaskService
	settings *SettingsService
}

func NewReportService(statsSvc *StatsService, tasks *TaskService, settings *SettingsService) *ReportService {
	return &ReportService{stats: statsSvc, tasks: tasks, settings: settings}
}

// DailySummary renders today's study report as Telegram-compatible HTML.
func (s *ReportService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	summary, err := s.stats.Summary(ctx, now)
	if err != nil {
		return "", err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	now = now.In(s.stats.Location())
	dayStart := stats.Start(now, stats.Day)
	today := stats.FocusOnly()
	today.From, today.To = dayStart, stats.Next(dayStart, stats.Day)
	categories, err := s.stats.ByCategory(ctx, today)
	if err != nil {
		return "", err
	}
	tasks, err := s.tasks.ListActive(ctx)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("🍅 <b>Daily study report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	builder.WriteString(fmt.Sprintf("⏱ Focused: <b>%s</b> in %d pomodoros\n",
		stats.FormatDuration(summary.TodaySeconds), summary.TodaySessions))
	if settings.DailyGoalMinutes > 0 {
		progress := stats.GoalProgress(summary.TodaySeconds, settings.DailyGoalMinutes)
		builder.WriteString(fmt.Sprintf("🎯 Goal: %d%% of %s\n",
			int(progress*100), stats.FormatDuration(settings.DailyGoalMinutes*60)))
	}
	builder.WriteString(fmt.Sprintf("🔥 Streak: %d days (best %d)\n", summary.CurrentStreak, summary.LongestStreak))
	builder.WriteString(fmt.Sprintf("📆 This week: %s\n", stats.FormatDuration(summary.WeekSeconds)))

	if len(categories) > 0 {
		builder.WriteString("\n📚 <b>By category</b>\n")
		for _, c := range categories {
			builder.WriteString(fmt.Sprintf("• %s: %s\n", escapeHTML(c.Name), stats.FormatDuration(c.Seconds)))
		}
	}

	builder.WriteString("\n📝 <b>Open tasks</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("— no open tasks\n")
	} else {
		for i, t := range tasks {
			line := fmt.Sprintf("%d. %s", i+1, escapeHTML(t.Title))
			if t.EstimatedPomodoros > 0 {
				line += fmt.Sprintf(" (%d/%d 🍅)", t.CompletedPomodoros, t.EstimatedPomodoros)
			}
			builder.WriteString(line + "\n")
		}
	}
	return builder.String(), nil
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
