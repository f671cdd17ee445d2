package stats

import (
	"sort"
	"time"

	"pomotaro/internal/model"
)

// Summary is the headline view of the study history.
type Summary struct {
	TodaySeconds        int `json:"todaySeconds"`
	TodaySessions       int `json:"todaySessions"`
	WeekSeconds         int `json:"weekSeconds"`
	MonthSeconds        int `json:"monthSeconds"`
	YearSeconds         int `json:"yearSeconds"`
	TotalSeconds        int `json:"totalSeconds"`
	TotalSessions       int `json:"totalSessions"`
	ActiveDays          int `json:"activeDays"`
	AverageDailySeconds int `json:"averageDailySeconds"`
	CurrentStreak       int `json:"currentStreak"`
	LongestStreak       int `json:"longestStreak"`
}

// Summarize computes totals for the periods containing now, plus streaks.
// Only focus sessions count.
func Summarize(records []model.SessionRecord, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	focus := FocusOnly()

	var s Summary
	days := make(map[string]bool)
	for _, r := range records {
		if !focus.Match(r) {
			continue
		}
		ts := r.Timestamp.In(loc)
		s.TotalSeconds += r.Duration
		s.TotalSessions++
		days[Key(Start(ts, Day), Day)] = true

		if Start(ts, Year).Equal(Start(now, Year)) {
			s.YearSeconds += r.Duration
		}
		if Start(ts, Month).Equal(Start(now, Month)) {
			s.MonthSeconds += r.Duration
		}
		if Start(ts, Week).Equal(Start(now, Week)) {
			s.WeekSeconds += r.Duration
		}
		if Start(ts, Day).Equal(Start(now, Day)) {
			s.TodaySeconds += r.Duration
			s.TodaySessions++
		}
	}

	s.ActiveDays = len(days)
	if s.ActiveDays > 0 {
		s.AverageDailySeconds = s.TotalSeconds / s.ActiveDays
	}
	s.CurrentStreak = currentStreak(days, now)
	s.LongestStreak = longestStreak(days, loc)
	return s
}

// currentStreak counts consecutive study days ending today. When nothing has
// been logged today yet the streak is counted from yesterday, so it does not
// break before the day is over.
func currentStreak(days map[string]bool, now time.Time) int {
	day := Start(now, Day)
	if !days[Key(day, Day)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[Key(day, Day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func longestStreak(days map[string]bool, loc *time.Location) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]time.Time, 0, len(days))
	for k := range days {
		d, err := time.ParseInLocation("2006-01-02", k, loc)
		if err != nil {
			continue
		}
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDate(0, 0, 1).Equal(sorted[i]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// GoalProgress returns today's progress toward the daily goal in [0, 1].
// A zero goal counts as reached.
func GoalProgress(todaySeconds, goalMinutes int) float64 {
	if goalMinutes <= 0 {
		return 1
	}
	p := float64(todaySeconds) / float64(goalMinutes*60)
	if p > 1 {
		return 1
	}
	return p
}
