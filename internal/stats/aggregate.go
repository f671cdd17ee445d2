// Package stats rolls session history up into daily, weekly, monthly and
// yearly totals, streaks, category breakdowns and calendar grids.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pomotaro/internal/model"
)

// Granularity is the width of an aggregation bucket.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// ParseGranularity accepts day, week, month or year (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Day, Week, Month, Year:
		return g, nil
	case "":
		return Day, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want day, week, month or year)", s)
	}
}

// Start returns the beginning of the bucket containing t, in t's location.
// Weeks start on Monday.
func Start(t time.Time, g Granularity) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

// Next returns the start of the bucket following the one starting at start.
func Next(start time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Key formats a bucket start as a stable label.
func Key(start time.Time, g Granularity) string {
	switch g {
	case Month:
		return start.Format("2006-01")
	case Year:
		return start.Format("2006")
	default:
		return start.Format("2006-01-02")
	}
}

// Bucket is the accumulated time of one period.
type Bucket struct {
	Key      string    `json:"key"`
	Start    time.Time `json:"start"`
	Seconds  int       `json:"seconds"`
	Sessions int       `json:"sessions"`
}

// Minutes returns the bucket total in whole minutes.
func (b Bucket) Minutes() int { return b.Seconds / 60 }

// Filter selects which records take part in an aggregation.
type Filter struct {
	Types      []model.SessionType
	CategoryID string
	From, To   time.Time // half-open [From, To); zero means unbounded
}

// FocusOnly counts pomodoro sessions only; breaks are not study time.
func FocusOnly() Filter {
	return Filter{Types: []model.SessionType{model.Pomodoro}}
}

// Match reports whether r passes the filter.
func (f Filter) Match(r model.SessionRecord) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if r.SessionType == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.CategoryID != "" && r.CategoryID != f.CategoryID {
		return false
	}
	if !f.From.IsZero() && r.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.Timestamp.Before(f.To) {
		return false
	}
	return true
}

// Aggregate groups matching records into buckets. Only non-empty buckets are
// returned, sorted by start.
func Aggregate(records []model.SessionRecord, g Granularity, loc *time.Location, f Filter) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	byKey := make(map[string]*Bucket)
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		start := Start(r.Timestamp.In(loc), g)
		key := Key(start, g)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Start: start}
			byKey[key] = b
		}
		b.Seconds += r.Duration
		b.Sessions++
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Series returns one bucket per period between from and to (both inclusive),
// with zero buckets for periods without study. Suitable as chart input.
func Series(records []model.SessionRecord, g Granularity, loc *time.Location, f Filter, from, to time.Time) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	first := Start(from.In(loc), g)
	last := Start(to.In(loc), g)
	if last.Before(first) {
		return nil
	}

	f.From = first
	f.To = Next(last, g)
	totals := make(map[string]Bucket)
	for _, b := range Aggregate(records, g, loc, f) {
		totals[b.Key] = b
	}

	var out []Bucket
	for cur := first; !cur.After(last); cur = Next(cur, g) {
		key := Key(cur, g)
		b, ok := totals[key]
		if !ok {
			b = Bucket{Key: key, Start: cur}
		}
		out = append(out, b)
	}
	return out
}

// Total sums the seconds of all matching records.
func Total(records []model.SessionRecord, f Filter) (seconds, sessions int) {
	for _, r := range records {
		if f.Match(r) {
			seconds += r.Duration
			sessions++
		}
	}
	return seconds, sessions
}

// FormatDuration renders seconds as "1h 05m" or "25m".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
