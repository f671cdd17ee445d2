package stats

import (
	"time"

	"pomotaro/internal/model"
)

// CalendarDay is one cell of the study calendar.
type CalendarDay struct {
	Date    time.Time `json:"date"`
	Seconds int       `json:"seconds"`
	Level   int       `json:"level"`
	InMonth bool      `json:"inMonth"`
}

// Intensity maps daily study time to a heat level from 0 to 4.
func Intensity(seconds int) int {
	switch {
	case seconds <= 0:
		return 0
	case seconds < 30*60:
		return 1
	case seconds < 60*60:
		return 2
	case seconds < 2*60*60:
		return 3
	default:
		return 4
	}
}

// MonthGrid returns the calendar of the given month as full weeks starting
// on Monday. Days outside the month are included with InMonth false.
func MonthGrid(records []model.SessionRecord, year int, month time.Month, loc *time.Location) [][]CalendarDay {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	gridStart := Start(first, Week)
	lastDay := first.AddDate(0, 1, -1)
	gridEnd := Start(lastDay, Week).AddDate(0, 0, 6)

	totals := make(map[string]int)
	for _, b := range Series(records, Day, loc, FocusOnly(), gridStart, gridEnd) {
		totals[b.Key] = b.Seconds
	}

	var weeks [][]CalendarDay
	for ws := gridStart; !ws.After(gridEnd); ws = ws.AddDate(0, 0, 7) {
		week := make([]CalendarDay, 0, 7)
		for i := 0; i < 7; i++ {
			d := ws.AddDate(0, 0, i)
			secs := totals[Key(d, Day)]
			week = append(week, CalendarDay{
				Date:    d,
				Seconds: secs,
				Level:   Intensity(secs),
				InMonth: d.Month() == month,
			})
		}
		weeks = append(weeks, week)
	}
	return weeks
}
