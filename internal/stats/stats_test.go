package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotaro/internal/model"
)

func rec(id string, ts time.Time, secs int, st model.SessionType) model.SessionRecord {
	return model.SessionRecord{ID: id, Timestamp: ts, Duration: secs, SessionType: st}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("Week")
	require.NoError(t, err)
	assert.Equal(t, Week, g)

	g, err = ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Day, g)

	_, err = ParseGranularity("fortnight")
	assert.Error(t, err)
}

func TestStartAndKey(t *testing.T) {
	// 2026-10-18 is a Sunday; its ISO week starts Monday 2026-10-12.
	ts := time.Date(2026, 10, 18, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-18", Key(Start(ts, Day), Day))
	assert.Equal(t, "2026-10-12", Key(Start(ts, Week), Week))
	assert.Equal(t, "2026-10", Key(Start(ts, Month), Month))
	assert.Equal(t, "2026", Key(Start(ts, Year), Year))

	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	assert.True(t, Start(monday, Week).Equal(monday))
}

func TestAggregateRespectsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	records := []model.SessionRecord{
		// 20:00 UTC on the 1st is 05:00 on the 2nd in Tokyo.
		rec("a", day(2026, 10, 1, 20), 1500, model.Pomodoro),
		rec("b", day(2026, 10, 1, 8), 1500, model.Pomodoro),
	}

	utc := Aggregate(records, Day, time.UTC, FocusOnly())
	require.Len(t, utc, 1)
	assert.Equal(t, 3000, utc[0].Seconds)

	jst := Aggregate(records, Day, tokyo, FocusOnly())
	require.Len(t, jst, 2)
	assert.Equal(t, "2026-10-01", jst[0].Key)
	assert.Equal(t, "2026-10-02", jst[1].Key)
}

func TestAggregateGranularities(t *testing.T) {
	records := []model.SessionRecord{
		rec("1", day(2026, 1, 5, 9), 1500, model.Pomodoro),
		rec("2", day(2026, 1, 6, 9), 1500, model.Pomodoro),
		rec("3", day(2026, 1, 6, 10), 300, model.ShortBreak),
		rec("4", day(2026, 2, 1, 9), 3000, model.Pomodoro),
		rec("5", day(2025, 12, 31, 9), 600, model.Pomodoro),
	}

	weeks := Aggregate(records, Week, time.UTC, FocusOnly())
	require.Len(t, weeks, 3)
	assert.Equal(t, "2025-12-29", weeks[0].Key)
	assert.Equal(t, 600, weeks[0].Seconds)
	assert.Equal(t, "2026-01-05", weeks[1].Key)
	assert.Equal(t, 3000, weeks[1].Seconds)
	assert.Equal(t, 2, weeks[1].Sessions)

	months := Aggregate(records, Month, time.UTC, FocusOnly())
	require.Len(t, months, 3)
	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, []string{months[0].Key, months[1].Key, months[2].Key})

	years := Aggregate(records, Year, time.UTC, FocusOnly())
	require.Len(t, years, 2)
	assert.Equal(t, 6000, years[1].Seconds)

	all := Aggregate(records, Year, time.UTC, Filter{})
	assert.Equal(t, 6300, all[1].Seconds)
}

func TestFilter(t *testing.T) {
	r := model.SessionRecord{ID: "x", Timestamp: day(2026, 3, 3, 12), SessionType: model.Pomodoro, CategoryID: "math"}
	assert.True(t, Filter{}.Match(r))
	assert.False(t, Filter{CategoryID: "art"}.Match(r))
	assert.False(t, Filter{Types: []model.SessionType{model.LongBreak}}.Match(r))
	assert.True(t, Filter{From: day(2026, 3, 3, 12)}.Match(r))
	assert.False(t, Filter{To: day(2026, 3, 3, 12)}.Match(r))
}

func TestSeriesFillsGaps(t *testing.T) {
	records := []model.SessionRecord{
		rec("1", day(2026, 10, 12, 9), 1500, model.Pomodoro),
		rec("2", day(2026, 10, 14, 9), 1200, model.Pomodoro),
		rec("3", day(2026, 10, 20, 9), 1200, model.Pomodoro),
	}
	series := Series(records, Day, time.UTC, FocusOnly(), day(2026, 10, 12, 0), day(2026, 10, 18, 23))
	require.Len(t, series, 7)
	assert.Equal(t, 1500, series[0].Seconds)
	assert.Equal(t, 0, series[1].Seconds)
	assert.Equal(t, "2026-10-13", series[1].Key)
	assert.Equal(t, 1200, series[2].Seconds)
	assert.Equal(t, 0, series[6].Seconds)

	assert.Nil(t, Series(records, Day, time.UTC, FocusOnly(), day(2026, 10, 18, 0), day(2026, 10, 12, 0)))
}

func TestSummarize(t *testing.T) {
	now := day(2026, 10, 18, 20) // Sunday
	records := []model.SessionRecord{
		rec("1", day(2026, 10, 18, 9), 1500, model.Pomodoro),
		rec("2", day(2026, 10, 18, 10), 1500, model.Pomodoro),
		rec("3", day(2026, 10, 18, 11), 300, model.ShortBreak),
		rec("4", day(2026, 10, 17, 9), 1500, model.Pomodoro),
		rec("5", day(2026, 10, 16, 9), 1500, model.Pomodoro),
		rec("6", day(2026, 10, 10, 9), 1500, model.Pomodoro),
		rec("7", day(2026, 9, 1, 9), 1500, model.Pomodoro),
		rec("8", day(2026, 9, 2, 9), 1500, model.Pomodoro),
		rec("9", day(2026, 9, 3, 9), 1500, model.Pomodoro),
		rec("10", day(2026, 9, 4, 9), 1500, model.Pomodoro),
	}

	s := Summarize(records, now, time.UTC)
	assert.Equal(t, 3000, s.TodaySeconds)
	assert.Equal(t, 2, s.TodaySessions)
	assert.Equal(t, 6000, s.WeekSeconds)
	assert.Equal(t, 7500, s.MonthSeconds)
	assert.Equal(t, 13500, s.YearSeconds)
	assert.Equal(t, 13500, s.TotalSeconds)
	assert.Equal(t, 9, s.TotalSessions)
	assert.Equal(t, 8, s.ActiveDays)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 4, s.LongestStreak)
}

func TestCurrentStreakSurvivesUntilDayEnds(t *testing.T) {
	records := []model.SessionRecord{
		rec("1", day(2026, 10, 17, 9), 1500, model.Pomodoro),
		rec("2", day(2026, 10, 16, 9), 1500, model.Pomodoro),
	}
	assert.Equal(t, 2, Summarize(records, day(2026, 10, 18, 8), time.UTC).CurrentStreak)
	assert.Equal(t, 0, Summarize(records, day(2026, 10, 19, 8), time.UTC).CurrentStreak)
	assert.Equal(t, Summary{}, Summarize(nil, day(2026, 10, 19, 8), time.UTC))
}

func TestGoalProgress(t *testing.T) {
	assert.InDelta(t, 0.5, GoalProgress(3600, 120), 1e-9)
	assert.Equal(t, 1.0, GoalProgress(10000, 60))
	assert.Equal(t, 1.0, GoalProgress(0, 0))
}

func TestByCategoryKeepsDeletedNames(t *testing.T) {
	records := []model.SessionRecord{
		{ID: "1", Duration: 3000, SessionType: model.Pomodoro, CategoryID: "m", CategoryName: "Math"},
		{ID: "2", Duration: 1000, SessionType: model.Pomodoro},
		{ID: "3", Duration: 1000, SessionType: model.Pomodoro, CategoryID: "gone", CategoryName: "Latin"},
		{ID: "4", Duration: 600, SessionType: model.ShortBreak, CategoryID: "m", CategoryName: "Math"},
	}
	totals := ByCategory(records, FocusOnly())
	require.Len(t, totals, 3)
	assert.Equal(t, "Math", totals[0].Name)
	assert.InDelta(t, 0.6, totals[0].Share, 1e-9)
	assert.Equal(t, "Latin", totals[1].Name)
	assert.Equal(t, Uncategorized, totals[2].Name)
}

func TestByTask(t *testing.T) {
	records := []model.SessionRecord{
		{ID: "1", Duration: 1500, SessionType: model.Pomodoro, TaskName: "Essay"},
		{ID: "2", Duration: 1500, SessionType: model.Pomodoro, TaskName: "Essay"},
		{ID: "3", Duration: 1500, SessionType: model.Pomodoro, TaskName: "Flashcards"},
		{ID: "4", Duration: 1500, SessionType: model.Pomodoro},
	}
	totals := ByTask(records, FocusOnly())
	require.Len(t, totals, 2)
	assert.Equal(t, TaskTotal{Name: "Essay", Seconds: 3000, Sessions: 2}, totals[0])
}

func TestMonthGrid(t *testing.T) {
	records := []model.SessionRecord{
		rec("1", day(2026, 10, 1, 9), 1500, model.Pomodoro),
		rec("2", day(2026, 10, 1, 10), 1500, model.Pomodoro),
		rec("3", day(2026, 10, 31, 10), 9000, model.Pomodoro),
		rec("4", day(2026, 9, 30, 10), 600, model.Pomodoro),
	}
	grid := MonthGrid(records, 2026, time.October, time.UTC)

	// October 2026 starts on a Thursday and ends on a Saturday: 5 Monday-first weeks.
	require.Len(t, grid, 5)
	for _, w := range grid {
		require.Len(t, w, 7)
		assert.Equal(t, time.Monday, w[0].Date.Weekday())
	}

	assert.False(t, grid[0][2].InMonth)
	assert.Equal(t, 600, grid[0][2].Seconds)
	assert.True(t, grid[0][3].InMonth)
	assert.Equal(t, 3000, grid[0][3].Seconds)
	assert.Equal(t, 2, grid[0][3].Level)
	assert.Equal(t, 4, grid[4][5].Level)
	assert.False(t, grid[4][6].InMonth)
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0, Intensity(0))
	assert.Equal(t, 1, Intensity(60))
	assert.Equal(t, 2, Intensity(30*60))
	assert.Equal(t, 3, Intensity(90*60))
	assert.Equal(t, 4, Intensity(5*3600))
}

func TestAchievements(t *testing.T) {
	list := Achievements(24 * 3600)
	require.Len(t, list, 5)
	assert.True(t, list[0].Unlocked)
	assert.True(t, list[2].Unlocked)
	assert.False(t, list[3].Unlocked)

	next, missing, ok := NextAchievement(24 * 3600)
	require.True(t, ok)
	assert.Equal(t, 4, next.ID)
	assert.Equal(t, 12*3600, missing)

	_, _, ok = NextAchievement(1000 * 3600)
	assert.False(t, ok)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "25m", FormatDuration(1500))
	assert.Equal(t, "1h 05m", FormatDuration(3900))
	assert.Equal(t, "0m", FormatDuration(-5))
}
