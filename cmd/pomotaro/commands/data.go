package commands

import (
	"context"
	"fmt"
	"os"

	"pomotaro/internal/backup"
)

// ExportCmd writes every stored blob to a single document.
type ExportCmd struct {
	Output string `arg:"" optional:"" help:"Destination file (default: stdout)" type:"path"`
	Format string `short:"f" help:"json or yaml (default: from the file extension)"`
}

func (c *ExportCmd) Run(g *Global, root *CLI) error {
	format, err := pickFormat(c.Format, c.Output)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if c.Output == "" {
		return a.Data.Export(ctx, g.out(), format)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := a.Data.Export(ctx, f, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(g.out(), "Exported to %s\n", c.Output)
	return nil
}

// ImportCmd loads an export. History is merged; tasks, categories and
// settings are replaced.
type ImportCmd struct {
	Input  string `arg:"" help:"File to import" type:"existingfile"`
	Format string `short:"f" help:"json or yaml (default: from the file extension)"`
}

func (c *ImportCmd) Run(g *Global, root *CLI) error {
	format, err := pickFormat(c.Format, c.Input)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	f, err := os.Open(c.Input)
	if err != nil {
		return fmt.Errorf("open import: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := a.Data.Import(ctx, f, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Imported %d new session(s), %d tasks, %d categories\n", res.HistoryAdded, res.Tasks, res.Categories)
	return nil
}

func pickFormat(flag, path string) (backup.Format, error) {
	if flag != "" {
		return backup.ParseFormat(flag)
	}
	return backup.FormatFromPath(path), nil
}
