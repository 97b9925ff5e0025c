package bubbletea

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
)

const (
	inputHeight     = 3
	footerHeight    = inputHeight + 2 // context line and border
	attachCommand   = "/attach "
	replyCancelZone = "reply-cancel"
)

// Footer is the composer: a textarea with the pending reply and the
// pending attachments above it.
type Footer struct {
	d     *dispatcher
	keys  *keyMap
	zones *zone.Manager

	state         kai.FooterState
	replyTo       *kai.Reply
	suggestions   []kai.Suggestion
	roomID        string
	currentUserID string
	features      kai.Features
	i18n          kai.I18n
	styles        Styles

	input textarea.Model
	emoji bool
	width int
}

func newFooter(b *bus.Bus, d *dispatcher, keys *keyMap, zones *zone.Manager) *Footer {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)

	f := &Footer{d: d, keys: keys, zones: zones, input: ta}

	bus.Subscribe(b, CurrentUserKey, func(next, _ string) {
		f.currentUserID = next
	})
	bus.Subscribe(b, RoomKey, func(next, _ kai.RoomState) {
		f.roomID = next.SelectedRoomID
	})
	bus.Subscribe(b, MessageKey, func(next, _ kai.MessageState) {
		f.replyTo = next.ReplyTo
		f.suggestions = next.Suggestions
	})
	bus.Subscribe(b, FeaturesKey, func(next, _ kai.Features) {
		f.features = next
	})
	bus.Subscribe(b, I18nKey, func(next, _ kai.I18n) {
		f.i18n = next
		f.input.Placeholder = next.FooterPlaceholder
	})
	bus.Subscribe(b, ThemeKey, func(next, _ kai.Theme) {
		f.styles = NewStyles(next)
	})
	first := true
	bus.Subscribe(b, FooterKey, func(next, prev kai.FooterState) {
		if first || next.Draft != prev.Draft {
			f.input.SetValue(next.Draft)
		}
		first = false
		f.keys.setEnterToSend(next.EnterToSend)
		f.input.KeyMap.InsertNewline.SetKeys(f.keys.Newline.Keys()...)
		f.state = next
	})
	return f
}

// SetWidth resizes the composer.
func (f *Footer) SetWidth(w int) {
	f.width = w
	f.input.SetWidth(w)
}

// Focus gives the textarea keyboard focus.
func (f *Footer) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes keyboard focus.
func (f *Footer) Blur() {
	f.emoji = false
	f.input.Blur()
}

// Value returns the text being composed.
func (f *Footer) Value() string { return f.input.Value() }

// Update handles a key while the footer has focus.
func (f *Footer) Update(msg tea.KeyMsg) tea.Cmd {
	if f.emoji {
		f.updateEmoji(msg)
		return nil
	}
	switch {
	case key.Matches(msg, f.keys.Send):
		f.send()
		return nil
	case key.Matches(msg, f.keys.Cancel):
		if f.replyTo != nil {
			f.d.emit(kai.EventCancelReply{})
		}
		return nil
	case key.Matches(msg, f.keys.Emoji):
		if f.features.Emoji {
			f.emoji = true
		}
		return nil
	case key.Matches(msg, f.keys.Detach):
		if n := len(f.state.Attachments); n > 0 {
			f.d.emit(kai.EventRemoveAttachment{Attachment: f.state.Attachments[n-1]})
		}
		return nil
	case key.Matches(msg, f.keys.Suggestion):
		if i := digit(msg.String()); i >= 0 && i < len(f.suggestions) {
			f.d.emit(kai.EventSelectSuggestion{Suggestion: f.suggestions[i]})
		}
		return nil
	}
	return f.Forward(msg)
}

// Forward passes a message to the textarea.
func (f *Footer) Forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *Footer) updateEmoji(msg tea.KeyMsg) {
	if key.Matches(msg, f.keys.Cancel) {
		f.emoji = false
		return
	}
	if i := digit(msg.String()); i >= 0 && i < len(emojiPalette) {
		f.input.InsertString(emojiPalette[i])
		f.emoji = false
	}
}

func (f *Footer) send() {
	text := strings.TrimSpace(f.input.Value())
	if path, ok := strings.CutPrefix(text, attachCommand); ok && f.features.Attachments {
		if path = strings.TrimSpace(path); path != "" {
			f.d.emit(kai.EventSelectFile{Path: path})
		}
		f.input.Reset()
		return
	}
	if f.roomID == "" || (text == "" && len(f.state.Attachments) == 0) {
		return
	}
	f.d.emit(kai.EventSendMessage{
		RoomID:   f.roomID,
		SenderID: f.currentUserID,
		Content:  text,
		ReplyTo:  f.replyTo,
	})
	f.input.Reset()
}

// Click resolves a mouse click on the reply or attachment controls.
func (f *Footer) Click(msg tea.MouseMsg) bool {
	if f.zones == nil {
		return false
	}
	if f.replyTo != nil && f.zones.Get(replyCancelZone).InBounds(msg) {
		f.d.emit(kai.EventCancelReply{})
		return true
	}
	for i, a := range f.state.Attachments {
		if f.zones.Get(removeZone(i)).InBounds(msg) {
			f.d.emit(kai.EventRemoveAttachment{Attachment: a})
			return true
		}
	}
	return false
}

// View renders the composer.
func (f *Footer) View() string {
	border := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(f.styles.Border.GetBorderTopForeground()).
		Width(f.width)
	return border.Render(lipgloss.JoinVertical(lipgloss.Left, f.contextLine(), f.input.View()))
}

// contextLine shows the reply target, the pending attachments or the
// emoji palette.
func (f *Footer) contextLine() string {
	s := f.styles
	var parts []string
	if f.emoji {
		for i, e := range emojiPalette {
			parts = append(parts, s.Muted.Render(strconv.Itoa(i+1))+" "+e)
		}
		return strings.Join(parts, "  ")
	}
	if r := f.replyTo; r != nil {
		label := f.i18n.ReplyingTo + " " + r.SenderName + ": " + firstLine(r.Content)
		label = runewidth.Truncate(label, max(1, f.width/2), "…")
		parts = append(parts, s.Highlight.Render("↩ ")+label+" "+f.mark(replyCancelZone, s.Muted.Render("[x]")))
	}
	for i, a := range f.state.Attachments {
		parts = append(parts, "📎 "+a.Name+" "+f.mark(removeZone(i), s.Muted.Render("[x]")))
	}
	return lipgloss.NewStyle().MaxWidth(f.width).Render(strings.Join(parts, "  "))
}

func (f *Footer) mark(id, v string) string {
	if f.zones == nil {
		return v
	}
	return f.zones.Mark(id, v)
}

func removeZone(i int) string {
	return "attachment-remove:" + strconv.Itoa(i)
}
