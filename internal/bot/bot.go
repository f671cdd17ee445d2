package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pomotaro/internal/logfields"
	"pomotaro/internal/model"
	"pomotaro/internal/notify"
	"pomotaro/internal/service"
	"pomotaro/internal/stats"
	"pomotaro/internal/timer"
)

const (
	cbDonePrefix = "done:"
	barWidth     = 12
)

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps groups the services the bot answers from.
type Deps struct {
	Tasks    *service.TaskService
	Stats    *service.StatsService
	Reports  *service.ReportService
	Sessions *service.SessionService
	Settings *service.SettingsService
	Logger   *slog.Logger
}

// Bot is a Telegram companion bound to a single chat. It answers study
// questions and receives session notifications.
type Bot struct {
	api    *tgbotapi.BotAPI
	out    sender
	chatID int64
	deps   Deps
	now    func() time.Time
	log    *slog.Logger
}

var _ notify.Notifier = (*Bot)(nil)

func New(token string, chatID int64, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, chatID, deps)
	b.api = api
	b.log.Info("Bot authorized", slog.String("account", api.Self.UserName), logfields.ChatID(chatID))
	return b, nil
}

func newBot(out sender, chatID int64, deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{out: out, chatID: chatID, deps: deps, now: time.Now, log: logger.With("component", "bot")}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot api is not initialized")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("Start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Warn("Handle callback failed", logfields.Error(err))
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Warn("Handle message failed", logfields.Error(err))
			}
		}
	}

	return ctx.Err()
}

// Notify delivers an event to the configured chat.
func (b *Bot) Notify(_ context.Context, ev notify.Event) error {
	text := ev.Body
	if ev.Title != "" && ev.Kind != notify.KindDailyReport {
		text = fmt.Sprintf("<b>%s</b>\n%s", escape(ev.Title), ev.Body)
	}
	if err := b.sendText(b.chatID, text); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}

func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.ID == b.chatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.allowed(msg.Chat) {
		if msg.Chat != nil {
			b.log.Debug("Ignoring message from foreign chat", logfields.ChatID(msg.Chat.ID))
		}
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	b.log.Info("Command received", logfields.Command(msg.Command()), logfields.ChatID(msg.Chat.ID))
	return b.handleCommand(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.sendText(chatID, helpText())
	case "today":
		return b.handleToday(ctx, chatID)
	case "week":
		return b.handleWeek(ctx, chatID)
	case "tasks":
		return b.sendTaskList(ctx, chatID)
	case "done":
		return b.handleDone(ctx, chatID, msg.CommandArguments())
	case "status":
		return b.handleStatus(chatID)
	case "report":
		return b.handleReport(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := "there"
	if msg.From != nil && strings.TrimSpace(msg.From.FirstName) != "" {
		name = strings.TrimSpace(msg.From.FirstName)
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep you posted on your pomodoros.</b>\n\n%s", escape(name), helpText())
	return b.sendText(msg.Chat.ID, text)
}

func helpText() string {
	return "ℹ️ <b>Commands</b>\n" +
		"• /today — focus time and goal progress for today\n" +
		"• /week — the last seven days\n" +
		"• /tasks — open tasks\n" +
		"• /done &lt;n&gt; — mark task number n as done\n" +
		"• /status — what the timer is doing right now\n" +
		"• /report — the daily study report"
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	summary, err := b.deps.Stats.Summary(ctx, b.now())
	if err != nil {
		return b.sendError(chatID, "Could not load statistics", err)
	}
	settings, err := b.deps.Settings.Get(ctx)
	if err != nil {
		return b.sendError(chatID, "Could not load settings", err)
	}

	var builder strings.Builder
	builder.WriteString("📅 <b>Today</b>\n")
	builder.WriteString(fmt.Sprintf("⏱ %s in %d pomodoros\n", stats.FormatDuration(summary.TodaySeconds), summary.TodaySessions))
	if settings.DailyGoalMinutes > 0 {
		p := stats.GoalProgress(summary.TodaySeconds, settings.DailyGoalMinutes)
		builder.WriteString(fmt.Sprintf("🎯 %s %d%%\n", bar(p, barWidth), int(p*100)))
	}
	builder.WriteString(fmt.Sprintf("🔥 Streak: %d days", summary.CurrentStreak))
	return b.sendText(chatID, builder.String())
}

func (b *Bot) handleWeek(ctx context.Context, chatID int64) error {
	series, err := b.deps.Stats.Series(ctx, stats.Day, 7, stats.FocusOnly(), b.now())
	if err != nil {
		return b.sendError(chatID, "Could not load statistics", err)
	}
	peak, total := 0, 0
	for _, bk := range series {
		total += bk.Seconds
		if bk.Seconds > peak {
			peak = bk.Seconds
		}
	}

	var builder strings.Builder
	builder.WriteString("📊 <b>Last 7 days</b>\n<code>")
	for _, bk := range series {
		share := 0.0
		if peak > 0 {
			share = float64(bk.Seconds) / float64(peak)
		}
		builder.WriteString(fmt.Sprintf("%s %s %s\n", bk.Start.Format("Mon"), bar(share, barWidth), stats.FormatDuration(bk.Seconds)))
	}
	builder.WriteString("</code>")
	builder.WriteString(fmt.Sprintf("Total: <b>%s</b>", stats.FormatDuration(total)))
	return b.sendText(chatID, builder.String())
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, args string) error {
	ref := strings.TrimSpace(args)
	if ref == "" {
		return b.sendText(chatID, "Usage: /done &lt;n&gt;, where n is the number from /tasks.")
	}
	active, err := b.deps.Tasks.ListActive(ctx)
	if err != nil {
		return b.sendError(chatID, "Could not load tasks", err)
	}
	task, err := resolveActive(active, ref)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("No open task %s.", escape(ref)))
	}
	return b.completeTask(ctx, chatID, task.ID)
}

func resolveActive(active []model.Task, ref string) (*model.Task, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(active) {
			return nil, service.ErrNotFound
		}
		return &active[n-1], nil
	}
	for i := range active {
		if strings.HasPrefix(active[i].ID, ref) {
			return &active[i], nil
		}
	}
	return nil, service.ErrNotFound
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.deps.Tasks.Complete(ctx, taskID)
	if errors.Is(err, service.ErrNotFound) {
		return b.sendText(chatID, "That task no longer exists.")
	}
	if err != nil {
		return b.sendError(chatID, "Could not complete the task", err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Done: <b>%s</b> (%d 🍅)", escape(task.Title), task.CompletedPomodoros))
}

func (b *Bot) handleStatus(chatID int64) error {
	if b.deps.Sessions == nil {
		return b.sendText(chatID, "The timer is not running in this process.")
	}
	snap := b.deps.Sessions.Snapshot()
	_, task := b.deps.Sessions.ActiveTask()

	state := "⏸ paused"
	if snap.Running {
		state = "▶️ running"
	}
	text := fmt.Sprintf("%s <b>%s</b> %s\n%s, round %d of %d",
		sessionIcon(snap.SessionType), timer.FormatClock(snap.Remaining), snap.SessionType.Label(),
		state, snap.Round, snap.Interval)
	if task != "" {
		text += "\n📝 " + escape(task)
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	text, err := b.deps.Reports.DailySummary(ctx, b.now())
	if err != nil {
		return b.sendError(chatID, "Could not build the report", err)
	}
	return b.sendText(chatID, text)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.deps.Tasks.ListActive(ctx)
	if err != nil {
		return b.sendError(chatID, "Could not load tasks", err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No open tasks. Add some in the app.")
	}

	var builder strings.Builder
	builder.WriteString("📝 <b>Open tasks</b>\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, task := range tasks {
		line := fmt.Sprintf("%d. %s", i+1, escape(task.Title))
		if task.EstimatedPomodoros > 0 {
			line += fmt.Sprintf(" (%d/%d 🍅)", task.CompletedPomodoros, task.EstimatedPomodoros)
		} else if task.CompletedPomodoros > 0 {
			line += fmt.Sprintf(" (%d 🍅)", task.CompletedPomodoros)
		}
		builder.WriteString(line + "\n")
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %d · %s", i+1, shortTitle(task.Title, 24)), cbDonePrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.out.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || !b.allowed(cb.Message.Chat) {
		return nil
	}
	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("Callback ack failed", logfields.Error(err))
	}
	if !strings.HasPrefix(cb.Data, cbDonePrefix) {
		return nil
	}
	return b.completeTask(ctx, cb.Message.Chat.ID, strings.TrimPrefix(cb.Data, cbDonePrefix))
}

func (b *Bot) sendError(chatID int64, what string, err error) error {
	b.log.Error(what, logfields.Error(err))
	return b.sendText(chatID, fmt.Sprintf("%s: %s", what, escape(err.Error())))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.out.Send(msg)
	return err
}

func sessionIcon(st model.SessionType) string {
	switch st {
	case model.ShortBreak:
		return "☕"
	case model.LongBreak:
		return "🌴"
	default:
		return "🍅"
	}
}

// bar draws share in [0, 1] as a fixed width block bar.
func bar(share float64, width int) string {
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	filled := int(share*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
