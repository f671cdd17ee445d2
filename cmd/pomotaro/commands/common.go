package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pomotaro/internal/app"
	"pomotaro/internal/config"
	"pomotaro/internal/timer"
)

// Global carries process-wide state into every command.
type Global struct {
	Out   io.Writer
	Clock timer.Clock
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	DB      string           `name:"db" help:"SQLite database path (overrides POMOTARO_DB)" type:"path"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run        RunCmd        `cmd:"" default:"1" help:"Open the terminal timer (default)"`
	Tasks      TasksCmd      `cmd:"" help:"Manage the study to-do list"`
	Categories CategoriesCmd `cmd:"" help:"Manage study categories"`
	Settings   SettingsCmd   `cmd:"" help:"Show or change timer settings"`
	Stats      StatsCmd      `cmd:"" help:"Show study statistics"`
	Calendar   CalendarCmd   `cmd:"" help:"Show the monthly study calendar"`
	History    HistoryCmd    `cmd:"" help:"List, log or clear recorded sessions"`
	Export     ExportCmd     `cmd:"" help:"Export all data to JSON or YAML"`
	Import     ImportCmd     `cmd:"" help:"Import data from a JSON or YAML export"`
	Report     ReportCmd     `cmd:"" help:"Print or send today's study report"`
	Serve      ServeCmd      `cmd:"" help:"Run the status API, Telegram bot and daily report without the UI"`

	cfg config.Config
}

// AfterApply runs after flag parsing; loads configuration and sets up logging once.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.DB != "" {
		cfg.DatabasePath = c.DB
	}
	if c.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	c.cfg = cfg
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	return nil
}

// open builds the application for a single command.
func (c *CLI) open(ctx context.Context, g *Global) (*app.App, error) {
	var opts app.Options
	if g != nil {
		opts.Clock = g.Clock
	}
	a, err := app.Open(ctx, c.cfg, slog.Default(), opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return a, nil
}

// now is the command's notion of the current time.
func (c *CLI) now(g *Global) time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock.Now()
	}
	return time.Now()
}

// logToFile redirects logging away from the terminal while the UI owns it.
func (c *CLI) logToFile() (func(), error) {
	path := c.cfg.LogFile
	if path == "" {
		path = filepath.Join(filepath.Dir(c.cfg.DatabasePath), "pomotaro.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: c.cfg.LogLevel})))
	return func() {
		slog.SetDefault(prev)
		_ = f.Close()
	}, nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...).Rows(rows...)
	fmt.Fprintln(w, t.String())
}

// shortID trims a uuid to the prefix the resolvers accept.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
