package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pomotaro/internal/service"
)

// TasksCmd groups the to-do list subcommands.
type TasksCmd struct {
	List  TasksListCmd  `cmd:"" default:"1" help:"List tasks"`
	Add   TasksAddCmd   `cmd:"" help:"Add a task"`
	Done  TasksDoneCmd  `cmd:"" help:"Toggle a task done"`
	Rm    TasksRmCmd    `cmd:"" help:"Delete a task"`
	Clear TasksClearCmd `cmd:"" help:"Delete all completed tasks"`
}

type TasksListCmd struct {
	All bool `short:"a" help:"Include completed tasks"`
}

func (c *TasksListCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	tasks, err := a.Tasks.List(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		if t.Completed && !c.All {
			continue
		}
		status := " "
		if t.Completed {
			status = "x"
		}
		est := "-"
		if t.EstimatedPomodoros > 0 {
			est = strconv.Itoa(t.EstimatedPomodoros)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), status, t.Title, strconv.Itoa(t.CompletedPomodoros), est, shortID(t.ID)})
	}
	if len(rows) == 0 {
		fmt.Fprintln(g.out(), "No tasks.")
		return nil
	}
	renderTable(g.out(), []string{"#", "Done", "Title", "Pomodoros", "Estimate", "ID"}, rows)
	return nil
}

type TasksAddCmd struct {
	Title    []string `arg:"" help:"Task title"`
	Estimate int      `short:"e" help:"Estimated pomodoros (0-99)"`
}

func (c *TasksAddCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, err := a.Tasks.Create(ctx, service.TaskInput{Title: strings.Join(c.Title, " "), EstimatedPomodoros: c.Estimate})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Added %q (%s)\n", t.Title, shortID(t.ID))
	return nil
}

type TasksDoneCmd struct {
	Ref string `arg:"" help:"Task number, id or id prefix"`
}

func (c *TasksDoneCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, err := a.Tasks.Resolve(ctx, c.Ref)
	if err != nil {
		return err
	}
	t, err = a.Tasks.Toggle(ctx, t.ID)
	if err != nil {
		return err
	}
	state := "open"
	if t.Completed {
		state = "done"
	}
	fmt.Fprintf(g.out(), "%q is %s\n", t.Title, state)
	return nil
}

type TasksRmCmd struct {
	Ref string `arg:"" help:"Task number, id or id prefix"`
}

func (c *TasksRmCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, err := a.Tasks.Resolve(ctx, c.Ref)
	if err != nil {
		return err
	}
	if err := a.Tasks.Delete(ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Deleted %q\n", t.Title)
	return nil
}

type TasksClearCmd struct{}

func (c *TasksClearCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	n, err := a.Tasks.ClearCompleted(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Removed %d completed task(s)\n", n)
	return nil
}
