package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Mine      lipgloss.Style
	Theirs    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Selected  lipgloss.Style
	Badge     lipgloss.Style
	Reaction  lipgloss.Style
	Divider   lipgloss.Style
	Accent    lipgloss.Style
	Border    lipgloss.Style
	Dialog    lipgloss.Style
	Highlight lipgloss.Style
	Deleted   lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t kai.Theme) Styles {
	return Styles{
		Mine:      lipgloss.NewStyle().Foreground(ansiColor(t.Mine)).Bold(true),
		Theirs:    lipgloss.NewStyle().Foreground(ansiColor(t.Theirs)).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Selected:  lipgloss.NewStyle().Foreground(ansiColor(t.Selected)).Bold(true),
		Badge:     lipgloss.NewStyle().Foreground(ansiColor(t.DialogFg)).Background(ansiColor(t.Badge)).Bold(true).Padding(0, 1),
		Reaction:  lipgloss.NewStyle().Foreground(ansiColor(t.Reaction)),
		Divider:   lipgloss.NewStyle().Foreground(ansiColor(t.Divider)),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Border:    lipgloss.NewStyle().BorderForeground(ansiColor(t.Border)),
		Dialog:    lipgloss.NewStyle().Foreground(ansiColor(t.DialogFg)).Background(ansiColor(t.DialogBg)).Padding(1, 2),
		Highlight: lipgloss.NewStyle().Foreground(ansiColor(t.Highlight)).Bold(true),
		Deleted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Italic(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
