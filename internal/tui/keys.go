package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextView key.Binding
	PrevView key.Binding
	JumpView key.Binding

	// Timer
	Toggle     key.Binding
	Reset      key.Binding
	Skip       key.Binding
	Pomodoro   key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Category   key.Binding

	// Lists and stopwatch
	Add       key.Binding
	Select    key.Binding
	Done      key.Binding
	Delete    key.Binding
	More      key.Binding
	Less      key.Binding
	Save      key.Binding
	Discard   key.Binding
	Compact   key.Binding
	Help      key.Binding
	Escape    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous / decrease"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next / increase"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		JumpView: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "jump to view"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Pomodoro: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "pomodoro"),
		),
		ShortBreak: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "short break"),
		),
		LongBreak: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "long break"),
		),
		Category: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "cycle category"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "work on task"),
		),
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		More: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "estimate +1"),
		),
		Less: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "estimate -1"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save stopwatch"),
		),
		Discard: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "discard stopwatch"),
		),
		Compact: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compact mode"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns a short help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Skip, k.NextView, k.Compact, k.Help, k.Quit}
}

// FullHelp returns the full help string
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Skip, k.Pomodoro, k.ShortBreak, k.LongBreak, k.Category},
		{k.Up, k.Down, k.Left, k.Right, k.NextView, k.PrevView, k.JumpView},
		{k.Add, k.Select, k.Done, k.Delete, k.More, k.Less},
		{k.Save, k.Discard, k.Compact, k.Help, k.Quit},
	}
}
