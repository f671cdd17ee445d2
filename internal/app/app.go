// Package app wires configuration, storage, services and the optional
// background integrations (status API, Telegram bot, NATS events, daily
// report).
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"pomotaro/internal/bot"
	"pomotaro/internal/config"
	"pomotaro/internal/logfields"
	"pomotaro/internal/metrics"
	"pomotaro/internal/notify"
	"pomotaro/internal/repository"
	"pomotaro/internal/service"
	"pomotaro/internal/statusapi"
	"pomotaro/internal/timer"
)

// App holds every long-lived component.
type App struct {
	Config config.Config
	Logger *slog.Logger

	db       *gorm.DB
	registry *prometheus.Registry

	History    *repository.HistoryRepository
	Settings   *service.SettingsService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Sessions   *service.SessionService
	Stats      *service.StatsService
	Reports    *service.ReportService
	Data       *service.DataService
	Bot        *bot.Bot

	mu        sync.RWMutex
	notifiers notify.Multi
	nats      *notify.NATSNotifier
}

// Options tweak Open for tests.
type Options struct {
	Clock timer.Clock
}

// Open opens the database and builds the services.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		db:        db,
		registry:  prometheus.NewRegistry(),
		notifiers: notify.Multi{notify.LogNotifier{Logger: logger}},
	}

	store := repository.NewBlobStore(db)
	a.History = repository.NewHistoryRepository(store)
	a.Settings = service.NewSettingsService(repository.NewSettingsRepository(store))
	a.Tasks = service.NewTaskService(repository.NewTaskRepository(store))
	a.Categories = service.NewCategoryService(repository.NewCategoryRepository(store))
	a.Stats = service.NewStatsService(a.History, cfg.Location)
	a.Reports = service.NewReportService(a.Stats, a.Tasks, a.Settings)
	a.Data = service.NewDataService(a.History, a.Tasks, a.Categories, a.Settings)

	a.Sessions, err = service.NewSessionService(ctx, service.SessionDeps{
		History:    a.History,
		Tasks:      a.Tasks,
		Categories: a.Categories,
		Settings:   a.Settings,
		Notifier:   notify.Func(a.notify),
		Metrics:    metrics.NewPrometheusRecorder(a.registry),
		Clock:      opts.Clock,
		Location:   cfg.Location,
		Logger:     logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// notify fans events out to the notifiers registered so far.
func (a *App) notify(ctx context.Context, ev notify.Event) error {
	a.mu.RLock()
	targets := a.notifiers
	a.mu.RUnlock()
	return targets.Notify(ctx, ev)
}

// AddNotifier registers another notification channel.
func (a *App) AddNotifier(n notify.Notifier) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notifiers = append(a.notifiers, n)
}

// Notifier returns the application-wide fan-out notifier.
func (a *App) Notifier() notify.Notifier {
	return notify.Func(a.notify)
}

// EnableTelegram connects the bot and subscribes it to notifications.
// It is a no-op when no token is configured.
func (a *App) EnableTelegram() error {
	if !a.Config.TelegramEnabled() || a.Bot != nil {
		return nil
	}
	b, err := bot.New(a.Config.TelegramToken, a.Config.TelegramChatID, bot.Deps{
		Tasks:    a.Tasks,
		Stats:    a.Stats,
		Reports:  a.Reports,
		Sessions: a.Sessions,
		Settings: a.Settings,
		Logger:   a.Logger,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	a.Bot = b
	a.AddNotifier(b)
	return nil
}

// EnableNATS connects the event publisher. It is a no-op when no URL is configured.
func (a *App) EnableNATS() error {
	if a.Config.NATSURL == "" || a.nats != nil {
		return nil
	}
	n, err := notify.NewNATSNotifier(a.Config.NATSURL, a.Config.NATSSubject)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	a.nats = n
	a.AddNotifier(n)
	return nil
}

// Background starts the daily report job, the status API and the bot, and
// blocks until ctx is cancelled or one of them fails.
func (a *App) Background(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := service.NewSchedulerService(a.Config.Location, a.Logger)
	if a.Config.ReportTime != "" {
		id, err := scheduler.ScheduleDailyReport(a.Config.ReportTime, a.Reports, a.Notifier())
		if err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		a.Logger.Info("Daily report scheduled", slog.Time("next", scheduler.NextRun(id)))
	}

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 2)
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error("background component stopped", slog.String("component", name), logfields.Error(err))
				errs <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}()
	}

	if a.Config.StatusAddr != "" {
		srv := statusapi.NewServer(a.Config.StatusAddr, statusapi.Deps{
			Sessions: a.Sessions,
			Stats:    a.Stats,
			Metrics:  metrics.HTTPHandler(a.registry),
			Logger:   a.Logger,
		})
		run("status api", srv.Run)
	}
	if a.Bot != nil {
		run("telegram", a.Bot.Start)
	}

	<-ctx.Done()
	wg.Wait()
	close(errs)
	return errors.Join(collect(errs)...)
}

// TickLoop drives the timer without a UI attached.
func (a *App) TickLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := a.Sessions.Tick(ctx); err != nil {
				a.Logger.Error("timer tick failed", logfields.Error(err))
			}
		}
	}
}

// Close drains the event publisher and releases the database.
func (a *App) Close() error {
	var errs []error
	if a.nats != nil {
		errs = append(errs, a.nats.Close())
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	return errors.Join(append(errs, sqlDB.Close())...)
}

func collect(ch <-chan error) []error {
	var out []error
	for err := range ch {
		out = append(out, err)
	}
	return out
}
