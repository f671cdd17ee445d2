package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"pomotaro/internal/logfields"
	"pomotaro/internal/tui"
)

// RunCmd implements the default 'run' command: the terminal UI with the
// configured integrations running alongside it.
type RunCmd struct{}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	restore, err := root.logToFile()
	if err != nil {
		return err
	}
	defer restore()

	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.EnableTelegram(); err != nil {
		slog.Warn("Telegram companion disabled", logfields.Error(err))
	}
	if err := a.EnableNATS(); err != nil {
		slog.Warn("NATS events disabled", logfields.Error(err))
	}

	bgCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Background(bgCtx); err != nil {
			slog.Error("background services stopped", logfields.Error(err))
		}
	}()
	defer func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			slog.Warn("background services did not stop in time")
		}
	}()

	return tui.Run(ctx, tui.Services{
		Sessions:   a.Sessions,
		Tasks:      a.Tasks,
		Categories: a.Categories,
		Stats:      a.Stats,
		Settings:   a.Settings,
	}, tui.Options{StorePath: root.cfg.DatabasePath})
}
