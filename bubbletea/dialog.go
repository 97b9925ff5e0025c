package bubbletea

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	zone "github.com/lrstanley/bubblezone"
)

// Dialog is a modal prompt shown over the widget until the host hides it.
type Dialog struct {
	d     *dispatcher
	keys  *keyMap
	zones *zone.Manager

	dialog *kai.Dialog
	styles Styles
	side   kai.Side
}

func newDialog(b *bus.Bus, d *dispatcher, keys *keyMap, zones *zone.Manager) *Dialog {
	dl := &Dialog{d: d, keys: keys, zones: zones}
	bus.Subscribe(b, ThemeKey, func(next, _ kai.Theme) {
		dl.styles = NewStyles(next)
	})
	bus.Subscribe(b, DialogKey, func(next, _ *kai.Dialog) {
		dl.dialog = next
		dl.side = kai.SideRight
		if next != nil && next.Right == "" {
			dl.side = kai.SideLeft
		}
	})
	return dl
}

// Active reports whether a dialog is shown.
func (dl *Dialog) Active() bool { return dl.dialog != nil }

// Side returns the highlighted button.
func (dl *Dialog) Side() kai.Side { return dl.side }

// Update handles a key while the dialog is shown.
func (dl *Dialog) Update(msg tea.KeyMsg) {
	if dl.dialog == nil {
		return
	}
	switch {
	case key.Matches(msg, dl.keys.Left):
		if dl.dialog.Left != "" {
			dl.side = kai.SideLeft
		}
	case key.Matches(msg, dl.keys.Right):
		if dl.dialog.Right != "" {
			dl.side = kai.SideRight
		}
	case key.Matches(msg, dl.keys.Open):
		dl.press(dl.side)
	}
}

// Click resolves a mouse click on a button.
func (dl *Dialog) Click(msg tea.MouseMsg) bool {
	if dl.dialog == nil || dl.zones == nil {
		return false
	}
	for _, side := range []kai.Side{kai.SideLeft, kai.SideRight} {
		if dl.zones.Get(dialogZone(side)).InBounds(msg) {
			dl.press(side)
			return true
		}
	}
	return false
}

func (dl *Dialog) press(side kai.Side) {
	dl.d.emit(kai.EventClickDialogButton{Event: dl.dialog.Event, Side: side})
}

// View renders the dialog centered in a w×h area.
func (dl *Dialog) View(w, h int) string {
	if dl.dialog == nil {
		return ""
	}
	var buttons []string
	for _, b := range []struct {
		side  kai.Side
		label string
	}{{kai.SideLeft, dl.dialog.Left}, {kai.SideRight, dl.dialog.Right}} {
		if b.label == "" {
			continue
		}
		style := lipgloss.NewStyle().Padding(0, 1)
		if b.side == dl.side {
			style = dl.styles.Highlight.Padding(0, 1).Reverse(true)
		}
		if len(buttons) > 0 {
			buttons = append(buttons, "  ")
		}
		buttons = append(buttons, dl.mark(dialogZone(b.side), style.Render(b.label)))
	}
	bodyWidth := min(max(20, w/2), max(1, w-8))
	body := lipgloss.NewStyle().Width(bodyWidth).Render(dl.dialog.Body)
	row := lipgloss.NewStyle().Width(bodyWidth).Align(lipgloss.Right).Render(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	box := dl.styles.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, body, "", row))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

func (dl *Dialog) mark(id, v string) string {
	if dl.zones == nil {
		return v
	}
	return dl.zones.Mark(id, v)
}

func dialogZone(side kai.Side) string {
	return "dialog:" + string(side)
}
