package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pomotaro/internal/service"
	"pomotaro/internal/stats"
)

// HistoryCmd groups the session history subcommands.
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"" default:"1" help:"List recorded sessions, newest first"`
	Log   HistoryLogCmd   `cmd:"" help:"Record focus time studied away from the timer"`
	Clear HistoryClearCmd `cmd:"" help:"Delete every recorded session"`
}

type HistoryListCmd struct {
	Limit int `short:"n" help:"Number of sessions to show (0 for all)" default:"20"`
}

func (c *HistoryListCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	records, err := a.Sessions.History(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(g.out(), "No sessions recorded yet.")
		return nil
	}
	loc := a.Stats.Location()
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Timestamp.In(loc).Format("2006-01-02 15:04"),
			r.SessionType.Label(),
			stats.FormatDuration(r.Duration),
			r.TaskName,
			r.CategoryName,
		}
	}
	renderTable(g.out(), []string{"Finished", "Type", "Duration", "Task", "Category"}, rows)
	return nil
}

type HistoryLogCmd struct {
	Duration time.Duration `arg:"" help:"How long you studied, e.g. 45m or 1h30m"`
	At       string        `help:"When the session ended, as 'YYYY-MM-DD HH:MM' (default: now)"`
	Task     string        `help:"Attribute the time to a task (number, id or id prefix)"`
	Category string        `help:"Attribute the time to a category (number, name or id)"`
}

func (c *HistoryLogCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var at time.Time
	if c.At != "" {
		at, err = time.ParseInLocation("2006-01-02 15:04", c.At, a.Stats.Location())
		if err != nil {
			return fmt.Errorf("%w: --at must look like 2026-10-18 14:30", service.ErrInvalidInput)
		}
	}
	if c.Task != "" {
		t, err := a.Tasks.Resolve(ctx, c.Task)
		if err != nil {
			return err
		}
		if err := a.Sessions.SelectTask(ctx, t.ID); err != nil {
			return err
		}
	}
	if c.Category != "" {
		cat, err := a.Categories.Resolve(ctx, c.Category)
		if err != nil {
			return err
		}
		if err := a.Sessions.SelectCategory(ctx, cat.ID); err != nil {
			return err
		}
	}

	rec, err := a.Sessions.LogManual(ctx, c.Duration, at)
	if errors.Is(err, service.ErrTooShort) {
		return fmt.Errorf("sessions shorter than a minute are not recorded: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Logged %s of focus\n", stats.FormatDuration(rec.Duration))
	return nil
}

type HistoryClearCmd struct {
	Yes bool `short:"y" help:"Confirm deleting the whole history"`
}

func (c *HistoryClearCmd) Run(g *Global, root *CLI) error {
	if !c.Yes {
		return errors.New("refusing to clear history without --yes")
	}
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Sessions.ClearHistory(ctx); err != nil {
		return err
	}
	fmt.Fprintln(g.out(), "History cleared.")
	return nil
}
