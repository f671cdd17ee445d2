package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

// ServeCmd runs the timer headless: status API, Telegram bot and the daily
// report job until interrupted.
type ServeCmd struct {
	Addr string `help:"Status API listen address (overrides POMOTARO_STATUS_ADDR)" placeholder:"HOST:PORT"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.Addr != "" {
		root.cfg.StatusAddr = s.Addr
	}

	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.EnableTelegram(); err != nil {
		return err
	}
	if err := a.EnableNATS(); err != nil {
		return err
	}

	go a.TickLoop(ctx, 500*time.Millisecond)

	slog.Info("Pomotaro serving", slog.String("status_addr", root.cfg.StatusAddr), slog.Bool("telegram", a.Bot != nil))
	err = a.Background(ctx)
	slog.Info("Shutdown complete.")
	return err
}
