// Package tui is the terminal front end: timer, stopwatch, tasks, statistics,
// calendar and settings views on top of the service layer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pomotaro/internal/logfields"
	"pomotaro/internal/model"
	"pomotaro/internal/service"
	"pomotaro/internal/stats"
	"pomotaro/internal/storewatch"
)

// View identifies a screen of the app.
type View int

const (
	ViewTimer View = iota
	ViewStopwatch
	ViewTasks
	ViewStats
	ViewCalendar
	ViewSettings
)

var viewNames = []string{"Timer", "Stopwatch", "Tasks", "Stats", "Calendar", "Settings"}

func (v View) String() string { return viewNames[v] }

const tickInterval = 250 * time.Millisecond

// Services are the application services the UI drives.
type Services struct {
	Sessions   *service.SessionService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Stats      *service.StatsService
	Settings   *service.SettingsService
}

type tickMsg time.Time

// storeChangedMsg means another process wrote to the database.
type storeChangedMsg struct{}

type dataLoadedMsg struct {
	data appData
	err  error
}

// appData is everything the views render besides the live timer.
type appData struct {
	tasks        []model.Task
	categories   []model.Category
	settings     model.Settings
	summary      stats.Summary
	series       []stats.Bucket
	byCategory   []stats.CategoryTotal
	calendar     [][]stats.CalendarDay
	achievements []stats.Achievement
}

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	svc  Services
	keys KeyMap
	help help.Model
	bar  progress.Model

	input  textinput.Model
	adding bool

	view          View
	width         int
	height        int
	compact       bool
	data          appData
	taskCursor    int
	settingCursor int
	granularity   stats.Granularity
	calMonth      time.Time

	status string
	err    error
	title  string

	now  func() time.Time
	bell func()
}

// NewRootModel builds the UI around the services.
func NewRootModel(ctx context.Context, svc Services) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title (append ~3 to estimate 3 pomodoros)"
	ti.CharLimit = 120
	ti.Width = 60

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	now := time.Now()
	loc := svc.Stats.Location()
	return Model{
		ctx:         ctx,
		svc:         svc,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		bar:         bar,
		input:       ti,
		compact:     svc.Sessions.Settings().CompactMode,
		granularity: stats.Day,
		calMonth:    time.Date(now.In(loc).Year(), now.In(loc).Month(), 1, 0, 0, 0, 0, loc),
		now:         time.Now,
		bell:        func() { fmt.Fprint(os.Stderr, "\a") },
	}
}

// Options configure Run.
type Options struct {
	// StorePath is watched for writes from other processes; empty disables it.
	StorePath string
}

// Run starts the program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, svc Services, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewRootModel(ctx, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	if storewatch.Watchable(opts.StorePath) {
		w, err := storewatch.New(opts.StorePath, storewatch.DefaultDebounce, func() { p.Send(storeChangedMsg{}) }, nil)
		if err != nil {
			slog.Warn("Store watcher disabled", logfields.Error(err))
		} else {
			go func() { _ = w.Run(ctx) }()
		}
	}
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCmd reads tasks, settings and statistics for the current view state.
func (m Model) loadCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	g, month, now := m.granularity, m.calMonth, m.now()
	return func() tea.Msg {
		var d appData
		var err error
		if d.tasks, err = svc.Tasks.List(ctx); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.categories, err = svc.Categories.List(ctx); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.settings, err = svc.Settings.Get(ctx); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.summary, err = svc.Stats.Summary(ctx, now); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.series, err = svc.Stats.Series(ctx, g, seriesLength(g), stats.FocusOnly(), now); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.byCategory, err = svc.Stats.ByCategory(ctx, stats.FocusOnly()); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.calendar, err = svc.Stats.Calendar(ctx, month.Year(), month.Month()); err != nil {
			return dataLoadedMsg{err: err}
		}
		if d.achievements, err = svc.Stats.Achievements(ctx); err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{data: d}
	}
}

func seriesLength(g stats.Granularity) int {
	switch g {
	case stats.Week:
		return 8
	case stats.Month:
		return 12
	case stats.Year:
		return 5
	default:
		return 7
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(msg.Width-12, 50))
		return m, nil

	case tickMsg:
		return m.handleTick()

	case storeChangedMsg:
		if err := m.svc.Sessions.ReloadSettings(m.ctx); err != nil {
			m.err = err
		}
		m.compact = m.svc.Sessions.Settings().CompactMode
		return m, m.loadCmd()

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.data = msg.data
		m.taskCursor = clamp(m.taskCursor, 0, len(m.data.tasks)-1)
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd()}

	c, err := m.svc.Sessions.Tick(m.ctx)
	if err != nil {
		m.err = err
	}
	if c != nil {
		m.status = fmt.Sprintf("%s complete. Up next: %s.", c.SessionType.Label(), strings.ToLower(c.Next.Label()))
		if m.svc.Sessions.Settings().Sound && m.bell != nil {
			m.bell()
		}
		cmds = append(cmds, m.loadCmd())
	}

	if title := m.svc.Sessions.Presence().Title(); title != m.title {
		m.title = title
		cmds = append(cmds, tea.SetWindowTitle(title))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Compact):
		m.compact = !m.compact
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		m.view = (m.view + 1) % View(len(viewNames))
		return m, nil
	case key.Matches(msg, m.keys.PrevView):
		m.view = (m.view + View(len(viewNames)) - 1) % View(len(viewNames))
		return m, nil
	case key.Matches(msg, m.keys.JumpView):
		n, _ := strconv.Atoi(msg.String())
		m.view = View(n - 1)
		return m, nil
	}

	if m.compact {
		return m.handleTimerKey(msg)
	}
	switch m.view {
	case ViewStopwatch:
		return m.handleStopwatchKey(msg)
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewStats:
		return m.handleStatsKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	default:
		return m.handleTimerKey(msg)
	}
}

func (m Model) handleTimerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.svc.Sessions.Reset()
	case key.Matches(msg, m.keys.Skip):
		next := m.svc.Sessions.Skip()
		m.status = "Skipped. Up next: " + strings.ToLower(next.Label()) + "."
	case key.Matches(msg, m.keys.Pomodoro):
		m.err = m.svc.Sessions.Switch(model.Pomodoro)
	case key.Matches(msg, m.keys.ShortBreak):
		m.err = m.svc.Sessions.Switch(model.ShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		m.err = m.svc.Sessions.Switch(model.LongBreak)
	case key.Matches(msg, m.keys.Category):
		m.cycleCategory()
	}
	return m, nil
}

// cycleCategory moves the active category to the next one, wrapping through none.
func (m *Model) cycleCategory() {
	current, _ := m.svc.Sessions.ActiveCategory()
	next := ""
	if len(m.data.categories) > 0 {
		idx := -1
		for i, c := range m.data.categories {
			if c.ID == current {
				idx = i
			}
		}
		if idx+1 < len(m.data.categories) {
			next = m.data.categories[idx+1].ID
		}
	}
	if err := m.svc.Sessions.SelectCategory(m.ctx, next); err != nil {
		m.err = err
		return
	}
	if _, name := m.svc.Sessions.ActiveCategory(); name != "" {
		m.status = "Category: " + name
	} else {
		m.status = "No category"
	}
}

func (m Model) handleStopwatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.StopwatchToggle()
	case key.Matches(msg, m.keys.Save):
		rec, err := m.svc.Sessions.StopwatchSave(m.ctx)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %s of focus.", stats.FormatDuration(rec.Duration))
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Discard):
		m.svc.Sessions.StopwatchDiscard()
		m.status = "Stopwatch discarded."
	case key.Matches(msg, m.keys.Category):
		m.cycleCategory()
	}
	return m, nil
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Up):
		m.taskCursor = clamp(m.taskCursor-1, 0, len(m.data.tasks)-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.taskCursor = clamp(m.taskCursor+1, 0, len(m.data.tasks)-1)
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.Toggle()
		return m, nil
	}

	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	var err error
	switch {
	case key.Matches(msg, m.keys.Select):
		id := task.ID
		if active, _ := m.svc.Sessions.ActiveTask(); active == id {
			id = ""
		}
		err = m.svc.Sessions.SelectTask(m.ctx, id)
	case key.Matches(msg, m.keys.Done):
		_, err = m.svc.Tasks.Toggle(m.ctx, task.ID)
	case key.Matches(msg, m.keys.Delete):
		if active, _ := m.svc.Sessions.ActiveTask(); active == task.ID {
			err = m.svc.Sessions.SelectTask(m.ctx, "")
		}
		if err == nil {
			err = m.svc.Tasks.Delete(m.ctx, task.ID)
		}
	case key.Matches(msg, m.keys.More):
		_, err = m.svc.Tasks.SetEstimate(m.ctx, task.ID, task.EstimatedPomodoros+1)
	case key.Matches(msg, m.keys.Less):
		if task.EstimatedPomodoros > 0 {
			_, err = m.svc.Tasks.SetEstimate(m.ctx, task.ID, task.EstimatedPomodoros-1)
		}
	default:
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	return m, m.loadCmd()
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.taskCursor < 0 || m.taskCursor >= len(m.data.tasks) {
		return model.Task{}, false
	}
	return m.data.tasks[m.taskCursor], true
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.adding = false
		m.input.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.adding = false
		m.input.Blur()
		input := parseTaskInput(m.input.Value())
		if strings.TrimSpace(input.Title) == "" {
			return m, nil
		}
		if _, err := m.svc.Tasks.Create(m.ctx, input); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = "Task added."
		return m, m.loadCmd()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// parseTaskInput splits "Essay draft ~3" into a title and an estimate.
func parseTaskInput(raw string) service.TaskInput {
	fields := strings.Fields(raw)
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "~") {
		if est, err := strconv.Atoi(strings.TrimPrefix(fields[n-1], "~")); err == nil && est >= 0 {
			return service.TaskInput{Title: strings.Join(fields[:n-1], " "), EstimatedPomodoros: est}
		}
	}
	return service.TaskInput{Title: strings.Join(fields, " ")}
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := []stats.Granularity{stats.Day, stats.Week, stats.Month, stats.Year}
	idx := 0
	for i, g := range order {
		if g == m.granularity {
			idx = i
		}
	}
	switch {
	case key.Matches(msg, m.keys.Left):
		idx = (idx + len(order) - 1) % len(order)
	case key.Matches(msg, m.keys.Right):
		idx = (idx + 1) % len(order)
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.Toggle()
		return m, nil
	default:
		return m, nil
	}
	m.granularity = order[idx]
	return m, m.loadCmd()
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.calMonth = m.calMonth.AddDate(0, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.calMonth = m.calMonth.AddDate(0, 1, 0)
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.Toggle()
		return m, nil
	default:
		return m, nil
	}
	return m, m.loadCmd()
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Up):
		m.settingCursor = clamp(m.settingCursor-1, 0, len(settingFields)-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.settingCursor = clamp(m.settingCursor+1, 0, len(settingFields)-1)
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		m.svc.Sessions.Toggle()
		return m, nil
	}

	delta := 0
	switch {
	case key.Matches(msg, m.keys.Left):
		delta = -1
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Select):
		delta = 1
	default:
		return m, nil
	}
	field := settingFields[m.settingCursor]
	updated, err := m.svc.Settings.Update(m.ctx, func(s *model.Settings) { field.adjust(s, delta) })
	if err != nil {
		m.err = err
		return m, nil
	}
	m.data.settings = updated
	m.compact = updated.CompactMode
	return m, m.loadCmd()
}

// settingField is one adjustable row of the settings view.
type settingField struct {
	label  string
	value  func(model.Settings) string
	adjust func(*model.Settings, int)
}

var settingFields = []settingField{
	intField("Pomodoro (min)", func(s *model.Settings) *int { return &s.PomodoroMinutes }),
	intField("Short break (min)", func(s *model.Settings) *int { return &s.ShortBreakMinutes }),
	intField("Long break (min)", func(s *model.Settings) *int { return &s.LongBreakMinutes }),
	intField("Long break every", func(s *model.Settings) *int { return &s.LongBreakInterval }),
	stepField("Daily goal (min)", 15, func(s *model.Settings) *int { return &s.DailyGoalMinutes }),
	boolField("Auto-start breaks", func(s *model.Settings) *bool { return &s.AutoStartBreaks }),
	boolField("Auto-start pomodoros", func(s *model.Settings) *bool { return &s.AutoStartPomodoros }),
	boolField("Show progress", func(s *model.Settings) *bool { return &s.ShowProgress }),
	boolField("Compact mode", func(s *model.Settings) *bool { return &s.CompactMode }),
	boolField("Always on top", func(s *model.Settings) *bool { return &s.AlwaysOnTop }),
	boolField("Presence", func(s *model.Settings) *bool { return &s.PresenceEnabled }),
	boolField("Notifications", func(s *model.Settings) *bool { return &s.Notifications }),
	boolField("Sound", func(s *model.Settings) *bool { return &s.Sound }),
}

func intField(label string, ptr func(*model.Settings) *int) settingField {
	return stepField(label, 1, ptr)
}

func stepField(label string, step int, ptr func(*model.Settings) *int) settingField {
	return settingField{
		label:  label,
		value:  func(s model.Settings) string { return strconv.Itoa(*ptr(&s)) },
		adjust: func(s *model.Settings, delta int) { *ptr(s) += delta * step },
	}
}

func boolField(label string, ptr func(*model.Settings) *bool) settingField {
	return settingField{
		label: label,
		value: func(s model.Settings) string {
			if *ptr(&s) {
				return "on"
			}
			return "off"
		},
		adjust: func(s *model.Settings, _ int) { *ptr(s) = !*ptr(s) },
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
