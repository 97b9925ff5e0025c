package bubbletea

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = keyMap{}

// keyMap holds the widget's key bindings. Pane-specific bindings are only
// consulted while that pane has focus.
type keyMap struct {
	Quit          key.Binding
	Focus         key.Binding
	ToggleSidebar key.Binding

	// Sidebar.
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Search  key.Binding
	AddRoom key.Binding
	Actions key.Binding

	// Messages.
	Prev     key.Binding
	Next     key.Binding
	Reply    key.Binding
	React    key.Binding
	Download key.Binding
	Bottom   key.Binding
	Pick     key.Binding

	// Footer.
	Send       key.Binding
	Newline    key.Binding
	Cancel     key.Binding
	Emoji      key.Binding
	Detach     key.Binding
	Suggestion key.Binding

	// Dialog.
	Left  key.Binding
	Right key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Focus:         key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "rooms")),

		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		AddRoom: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new room")),
		Actions: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "actions")),

		Prev:     key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "prev")),
		Next:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "next")),
		Reply:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),
		React:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "react")),
		Download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "latest")),
		Pick: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "pick"),
		),

		Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline: key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Emoji:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "emoji")),
		Detach:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "detach")),
		Suggestion: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1-9", "suggestion"),
		),

		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
	}
}

// setEnterToSend swaps the send and newline keys.
func (k *keyMap) setEnterToSend(on bool) {
	if on {
		k.Send.SetKeys("enter")
		k.Send.SetHelp("enter", "send")
		k.Newline.SetKeys("alt+enter", "ctrl+j")
		k.Newline.SetHelp("alt+enter", "newline")
		return
	}
	k.Send.SetKeys("ctrl+s")
	k.Send.SetHelp("ctrl+s", "send")
	k.Newline.SetKeys("enter")
	k.Newline.SetHelp("enter", "newline")
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Send, k.ToggleSidebar, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Search, k.AddRoom, k.Actions},
		{k.Prev, k.Next, k.Reply, k.React, k.Download, k.Bottom},
		{k.Send, k.Newline, k.Cancel, k.Emoji, k.Detach, k.Suggestion},
		{k.Focus, k.ToggleSidebar, k.Quit},
	}
}

// pane is the component holding keyboard focus.
type pane int

const (
	paneMessages pane = iota
	paneFooter
	paneSidebar
)

// paneHelp returns the bindings shown in the status line for p.
func (k keyMap) paneHelp(p pane) []key.Binding {
	switch p {
	case paneSidebar:
		return []key.Binding{k.Up, k.Down, k.Open, k.Search, k.AddRoom, k.Focus}
	case paneMessages:
		return []key.Binding{k.Next, k.Prev, k.Reply, k.React, k.Bottom, k.Focus}
	default:
		return []key.Binding{k.Send, k.Newline, k.Emoji, k.Focus, k.Quit}
	}
}

// digit returns the 0-based index of a 1-9 key, or -1.
func digit(s string) int {
	if len(s) > 0 {
		c := s[len(s)-1]
		if c >= '1' && c <= '9' {
			return int(c - '1')
		}
	}
	return -1
}
