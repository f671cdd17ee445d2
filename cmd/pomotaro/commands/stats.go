package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pomotaro/internal/model"
	"pomotaro/internal/service"
	"pomotaro/internal/stats"
)

// StatsCmd prints totals, a per-period series and the category breakdown.
type StatsCmd struct {
	By       string   `help:"Bucket size" enum:"day,week,month,year" default:"day"`
	Days     int      `help:"Number of periods to show" default:"7"`
	Category string   `help:"Only count one category (number, name or id)"`
	Types    []string `help:"Session types to count" default:"pomodoro"`
	Tasks    int      `help:"Show the top N tasks by study time (0 hides them)" default:"5"`
}

func (c *StatsCmd) Run(g *Global, root *CLI) error {
	if c.Days < 1 || c.Days > 366 {
		return fmt.Errorf("%w: --days must be between 1 and 366", service.ErrInvalidInput)
	}
	gran, err := stats.ParseGranularity(c.By)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	filter, err := parseTypes(c.Types)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if c.Category != "" {
		cat, err := a.Categories.Resolve(ctx, c.Category)
		if err != nil {
			return err
		}
		filter.CategoryID = cat.ID
	}

	now := root.now(g).In(a.Stats.Location())
	summary, err := a.Stats.Summary(ctx, now)
	if err != nil {
		return err
	}
	series, err := a.Stats.Series(ctx, gran, c.Days, filter, now)
	if err != nil {
		return err
	}
	byCategory, err := a.Stats.ByCategory(ctx, filter)
	if err != nil {
		return err
	}
	byTask, err := a.Stats.ByTask(ctx, filter)
	if err != nil {
		return err
	}

	out := g.out()
	fmt.Fprintf(out, "Today %s · Week %s · Month %s · Total %s\n",
		stats.FormatDuration(summary.TodaySeconds), stats.FormatDuration(summary.WeekSeconds),
		stats.FormatDuration(summary.MonthSeconds), stats.FormatDuration(summary.TotalSeconds))
	fmt.Fprintf(out, "Streak %d days (best %d) · %d active days · avg %s/day\n\n",
		summary.CurrentStreak, summary.LongestStreak, summary.ActiveDays, stats.FormatDuration(summary.AverageDailySeconds))

	rows := make([][]string, len(series))
	for i, b := range series {
		rows[i] = []string{b.Key, stats.FormatDuration(b.Seconds), strconv.Itoa(b.Sessions)}
	}
	renderTable(out, []string{strings.ToUpper(string(gran[:1])) + string(gran[1:]), "Time", "Sessions"}, rows)

	if len(byCategory) > 0 {
		rows = make([][]string, len(byCategory))
		for i, ct := range byCategory {
			rows[i] = []string{ct.Name, stats.FormatDuration(ct.Seconds), fmt.Sprintf("%.0f%%", ct.Share*100)}
		}
		renderTable(out, []string{"Category", "Time", "Share"}, rows)
	}

	if c.Tasks > 0 && len(byTask) > 0 {
		if len(byTask) > c.Tasks {
			byTask = byTask[:c.Tasks]
		}
		rows = make([][]string, len(byTask))
		for i, tt := range byTask {
			rows[i] = []string{tt.Name, stats.FormatDuration(tt.Seconds), strconv.Itoa(tt.Sessions)}
		}
		renderTable(out, []string{"Task", "Time", "Sessions"}, rows)
	}
	return nil
}

func parseTypes(raw []string) (stats.Filter, error) {
	var f stats.Filter
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			st := model.SessionType(strings.TrimSpace(part))
			if st == "" {
				continue
			}
			if !st.Valid() {
				return f, fmt.Errorf("%w: unknown session type %q (want pomodoro, shortBreak or longBreak)", service.ErrInvalidInput, st)
			}
			f.Types = append(f.Types, st)
		}
	}
	return f, nil
}

// CalendarCmd prints a month heat map of study time.
type CalendarCmd struct {
	Month string `help:"Month to show as YYYY-MM (default: current)" placeholder:"YYYY-MM"`
}

var heatGlyphs = []string{"·", "░", "▒", "▓", "█"}

func (c *CalendarCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	loc := a.Stats.Location()
	month := root.now(g).In(loc)
	if c.Month != "" {
		month, err = time.ParseInLocation("2006-01", c.Month, loc)
		if err != nil {
			return fmt.Errorf("%w: --month must look like 2026-10", service.ErrInvalidInput)
		}
	}

	grid, err := a.Stats.Calendar(ctx, month.Year(), month.Month())
	if err != nil {
		return err
	}

	out := g.out()
	fmt.Fprintf(out, "%s\n", month.Format("January 2006"))
	fmt.Fprintln(out, "Mo  Tu  We  Th  Fr  Sa  Su")
	total := 0
	for _, week := range grid {
		cells := make([]string, len(week))
		for i, d := range week {
			if !d.InMonth {
				cells[i] = "   "
				continue
			}
			total += d.Seconds
			cells[i] = fmt.Sprintf("%2d%s", d.Date.Day(), heatGlyphs[min(max(d.Level, 0), len(heatGlyphs)-1)])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, " "), " "))
	}
	fmt.Fprintf(out, "\nless %s more · total %s\n", strings.Join(heatGlyphs, ""), stats.FormatDuration(total))
	return nil
}
