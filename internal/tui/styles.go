package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pomotaro/internal/model"
)

// Palette
var (
	ColorTomato  = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorFg      = lipgloss.Color("#ABB2BF")
	ColorMuted   = lipgloss.Color("#636B78")
	ColorBorder  = lipgloss.Color("#3F4451")
)

// heatColors maps calendar intensity levels 0..4 to colors.
var heatColors = []lipgloss.Color{"#3F4451", "#5B3A3F", "#8A4A52", "#B85A64", "#E06C75"}

var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorTomato).Bold(true).PaddingLeft(1)

	TabStyle       = lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1)
	ActiveTabStyle = lipgloss.NewStyle().Foreground(ColorFg).Background(ColorBorder).Bold(true).Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(1, 2)

	ClockStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorFg)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorMagenta).Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorTomato)
	StatusStyle = lipgloss.NewStyle().Foreground(ColorYellow).PaddingLeft(1)

	CursorStyle = lipgloss.NewStyle().Foreground(ColorTomato).Bold(true)
	DoneStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Strikethrough(true)
	ActiveStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	BarStyle    = lipgloss.NewStyle().Foreground(ColorTomato)
)

// sessionColor is the accent of each session type.
func sessionColor(st model.SessionType) lipgloss.Color {
	switch st {
	case model.ShortBreak:
		return ColorGreen
	case model.LongBreak:
		return ColorBlue
	default:
		return ColorTomato
	}
}
