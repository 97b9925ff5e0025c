package bubbletea

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	"github.com/fwojciec/kai/goldmark"
	"github.com/fwojciec/kai/scroll"
	zone "github.com/lrstanley/bubblezone"
)

const (
	badgeZone  = "notification-badge"
	buttonZone = "scroll-button"
)

// emojiPalette is offered by the react key, one emoji per digit.
var emojiPalette = []string{"👍", "❤️", "😂", "😮", "😢", "🙏"}

type palette int

const (
	paletteNone palette = iota
	paletteEmoji
	paletteActions
)

type mdKey struct {
	source string
	width  int
}

// MessageList renders the feed of the selected room and keeps the scroll
// position right across room switches, prepended history and new messages.
//
// Every publish on the message channel runs the same pipeline: reconcile
// against the previous items, measure, let the controller plan, render,
// settle, then re-measure the sentinels.
type MessageList struct {
	d      *dispatcher
	keys   *keyMap
	zones  *zone.Manager
	logger *slog.Logger

	state         kai.MessageState
	roomID        string
	currentUserID string
	features      kai.Features
	i18n          kai.I18n
	styles        Styles
	markdown      *goldmark.Renderer
	mdCache       map[mdKey]string

	vp          viewport.Model
	scroller    *viewportScroller
	ctrl        *scroll.Controller
	gate        *scroll.Gate
	top, bottom *scroll.LineSentinel

	seen     bool
	selected string
	offsets  map[string]int
	palette  palette
	focused  bool
	width    int
}

func newMessageList(b *bus.Bus, d *dispatcher, keys *keyMap, zones *zone.Manager, logger *slog.Logger, gateOpts []scroll.GateOption) *MessageList {
	l := &MessageList{
		d:       d,
		keys:    keys,
		zones:   zones,
		logger:  logger,
		mdCache: make(map[mdKey]string),
		offsets: make(map[string]int),
		vp:      viewport.New(0, 0),
		ctrl:    scroll.NewController(scroll.WithControllerLogger(logger)),
	}
	l.vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up")),
		Down:         key.NewBinding(key.WithKeys("down")),
	}
	l.scroller = newViewportScroller(&l.vp, d)
	l.gate = scroll.NewGate(kai.TargetMessages, d.emit, gateOpts...)
	l.resetSentinels()

	bus.Subscribe(b, CurrentUserKey, func(next, _ string) {
		l.currentUserID = next
		l.ctrl.SetCurrentUser(next)
		l.render()
	})
	bus.Subscribe(b, RoomKey, func(next, _ kai.RoomState) {
		l.roomID = next.SelectedRoomID
	})
	bus.Subscribe(b, FeaturesKey, func(next, _ kai.Features) {
		l.features = next
		l.render()
	})
	bus.Subscribe(b, I18nKey, func(next, _ kai.I18n) {
		l.i18n = next
		l.render()
	})
	bus.Subscribe(b, ThemeKey, func(next, _ kai.Theme) {
		l.styles = NewStyles(next)
		l.markdown = goldmark.New(next)
		clear(l.mdCache)
		l.render()
	})
	bus.Subscribe(b, MessageKey, l.onMessages)
	return l
}

func (l *MessageList) onMessages(next, prev kai.MessageState) {
	prevItems := prev.Items
	if !l.seen {
		// The replayed value is the first content the list shows.
		prevItems = nil
		l.seen = true
	}
	m := scroll.Reconcile(prevItems, next.Items)
	before := l.scroller.Metrics()

	l.gate.SetLoading(next.IsLoading)
	l.ctrl.SetLoading(next.IsLoading)
	switch m.Kind {
	case scroll.RoomChanged:
		l.gate.Reset()
		l.selected = ""
		l.palette = paletteNone
		l.resetSentinels()
	case scroll.PrependedOlder:
		l.gate.OnSnapshotReceived(kai.Top)
	case scroll.AppendedNewer:
		l.gate.OnSnapshotReceived(kai.Bottom)
	}
	if prev.IsLoadingMore && !next.IsLoadingMore {
		l.gate.OnSnapshotReceived(kai.Top)
		l.gate.OnSnapshotReceived(kai.Bottom)
	}
	if m.Inconsistent {
		l.logger.Warn("message list changed without keeping its first item",
			"room", next.Items[0].ItemRoomID(), "items", len(next.Items))
	}
	l.ctrl.Begin(m, before)
	l.state = next
	l.render()

	if prev.IsLoading && !next.IsLoading {
		l.ctrl.OnBottomVisible(l.bottom.Visible())
	}
	// A short page leaves the top sentinel visible without a transition.
	if m.Kind == scroll.PrependedOlder && l.top.Visible() {
		l.onTopVisible(true)
	}
}

// resetSentinels replaces both sentinels so a new room reports its initial
// visibility afresh.
func (l *MessageList) resetSentinels() {
	if l.top != nil {
		l.top.Dispose()
		l.bottom.Dispose()
	}
	l.top = scroll.NewLineSentinel(scroll.EdgeTop)
	l.bottom = scroll.NewLineSentinel(scroll.EdgeBottom)
	l.top.Observe(l.onTopVisible)
	l.bottom.Observe(l.onBottomVisible)
}

func (l *MessageList) onTopVisible(visible bool) {
	if visible && len(l.state.Items) > 0 {
		l.requestMore(kai.Top)
	}
}

func (l *MessageList) onBottomVisible(visible bool) {
	l.ctrl.OnBottomVisible(visible)
	if visible && l.state.HasNewer && len(l.state.Items) > 0 {
		l.requestMore(kai.Bottom)
	}
}

func (l *MessageList) requestMore(dir kai.Direction) {
	if t, ok := l.gate.OnSentinelVisible(dir); ok {
		l.d.expire(kai.TargetMessages, t)
	}
}

// SetSize lays the list out in an area of width w and height h. The last
// line is reserved for the notification badge and scroll button.
func (l *MessageList) SetSize(w, h int) {
	atBottom := l.width == 0 || l.scroller.Metrics().DistanceFromBottom() == 0
	if w != l.width {
		clear(l.mdCache)
	}
	l.width = w
	l.vp.Width = w
	l.vp.Height = max(1, h-1)
	l.render()
	if atBottom {
		l.vp.GotoBottom()
		l.observe()
	}
}

// SetFocused moves keyboard focus to or from the list.
func (l *MessageList) SetFocused(focused bool) {
	l.focused = focused
	if !focused {
		l.palette = paletteNone
	}
	l.render()
}

// Update handles a key while the list has focus.
func (l *MessageList) Update(msg tea.KeyMsg) {
	if l.palette != paletteNone {
		l.updatePalette(msg)
		return
	}
	switch {
	case key.Matches(msg, l.keys.Next):
		l.moveSelection(1)
	case key.Matches(msg, l.keys.Prev):
		l.moveSelection(-1)
	case key.Matches(msg, l.keys.Bottom):
		l.ScrollToBottom()
	case key.Matches(msg, l.keys.Cancel):
		l.selected = ""
		l.render()
	case key.Matches(msg, l.keys.Reply):
		if m, ok := l.selectedMessage(); ok && l.features.Reply && !m.IsDeleted {
			l.d.emit(kai.EventReplyToMessage{ReplyTo: kai.ReplyFrom(m)})
		}
	case key.Matches(msg, l.keys.React):
		if m, ok := l.selectedMessage(); ok && l.features.Reactions && !m.IsDeleted {
			l.palette = paletteEmoji
			l.render()
		}
	case key.Matches(msg, l.keys.Actions):
		if m, ok := l.selectedMessage(); ok && !m.IsDeleted && len(l.actionsFor(m)) > 0 {
			l.palette = paletteActions
			l.render()
		}
	case key.Matches(msg, l.keys.Download):
		if m, ok := l.selectedMessage(); ok && len(m.Attachments) > 0 {
			l.d.emit(kai.EventDownloadAttachment{Attachment: m.Attachments[0]})
		}
	default:
		l.Scroll(msg)
	}
}

func (l *MessageList) updatePalette(msg tea.KeyMsg) {
	defer l.render()
	if key.Matches(msg, l.keys.Cancel) {
		l.palette = paletteNone
		return
	}
	i := digit(msg.String())
	m, ok := l.selectedMessage()
	if i < 0 || !ok {
		return
	}
	switch l.palette {
	case paletteEmoji:
		if i >= len(emojiPalette) {
			return
		}
		l.selectEmoji(m, emojiPalette[i])
	case paletteActions:
		actions := l.actionsFor(m)
		if i >= len(actions) {
			return
		}
		l.d.emit(kai.EventSelectAction{
			Type:      kai.ActionMessage,
			Action:    actions[i],
			RoomID:    l.roomID,
			MessageID: m.ID,
		})
	}
	l.palette = paletteNone
}

func (l *MessageList) selectEmoji(m kai.Message, emoji string) {
	if err := kai.ValidateEmoji(emoji); err != nil {
		l.logger.Warn("emoji rejected", "error", err)
		return
	}
	l.d.emit(kai.EventSelectEmoji{MessageID: m.ID, CurrentUserID: l.currentUserID, Emoji: emoji})
}

func (l *MessageList) actionsFor(m kai.Message) []kai.Action {
	if l.isMine(m) {
		return l.state.MyActions
	}
	return l.state.TheirActions
}

// Scroll applies a viewer scroll (keys or mouse wheel). It cancels a
// running smooth scroll.
func (l *MessageList) Scroll(msg tea.Msg) {
	before := l.vp.YOffset
	l.vp, _ = l.vp.Update(msg)
	if l.vp.YOffset != before {
		l.scroller.stop()
	}
	l.observe()
}

// ScrollToBottom scrolls to the newest message on request of the viewer.
func (l *MessageList) ScrollToBottom() {
	l.ctrl.ScrollToBottom(l.scroller, scroll.Smooth)
	l.observe()
}

// Frame advances a smooth scroll.
func (l *MessageList) Frame(msg frameMsg) {
	if l.scroller.step(msg.gen) {
		l.d.push(l.scroller.frame())
	}
	l.observe()
}

// Expire reopens the gate for an expired ticket.
func (l *MessageList) Expire(t scroll.Ticket) {
	l.gate.Expire(t)
}

// Click resolves a mouse click inside the list. It reports whether the
// click hit a zone.
func (l *MessageList) Click(msg tea.MouseMsg) bool {
	if l.zones == nil {
		return false
	}
	if (l.ctrl.Notification() && l.zones.Get(badgeZone).InBounds(msg)) ||
		(l.ctrl.ShowScrollButton() && l.zones.Get(buttonZone).InBounds(msg)) {
		l.ScrollToBottom()
		return true
	}
	for i, sg := range l.state.Suggestions {
		if l.zones.Get(suggestionZone(i)).InBounds(msg) {
			l.d.emit(kai.EventSelectSuggestion{Suggestion: sg})
			return true
		}
	}
	for _, it := range l.state.Items {
		m, ok := it.(kai.Message)
		if !ok || m.IsDeleted {
			continue
		}
		for i, a := range m.Attachments {
			if l.zones.Get(attachmentZone(m.ID, i)).InBounds(msg) {
				l.d.emit(kai.EventDownloadAttachment{Attachment: a})
				return true
			}
		}
		if !l.features.Reactions {
			continue
		}
		for e, users := range m.Reactions {
			if l.zones.Get(reactionZone(m.ID, e)).InBounds(msg) {
				l.d.emit(kai.EventClickReaction{MessageID: m.ID, Emoji: e, Users: users})
				return true
			}
		}
	}
	return false
}

// Notification reports whether the new message badge is shown.
func (l *MessageList) Notification() bool { return l.ctrl.Notification() }

// ShowScrollButton reports whether the scroll-to-bottom button is shown.
func (l *MessageList) ShowScrollButton() bool { return l.ctrl.ShowScrollButton() }

// Selected returns the id of the selected message.
func (l *MessageList) Selected() string { return l.selected }

func (l *MessageList) moveSelection(delta int) {
	var ids []string
	for _, it := range l.state.Items {
		if _, ok := it.(kai.Message); ok {
			ids = append(ids, it.ItemID())
		}
	}
	if len(ids) == 0 {
		return
	}
	i := len(ids) - 1
	if l.selected != "" {
		for j, id := range ids {
			if id == l.selected {
				i = max(0, min(len(ids)-1, j+delta))
				break
			}
		}
	}
	l.selected = ids[i]
	l.render()
	l.reveal(l.selected)
}

// reveal scrolls the minimum distance that brings item id into view.
func (l *MessageList) reveal(id string) {
	top, ok := l.offsets[id]
	if !ok {
		return
	}
	bottom := l.vp.TotalLineCount()
	for _, it := range l.state.Items {
		if o, ok := l.offsets[it.ItemID()]; ok && o > top && o < bottom {
			bottom = o
		}
	}
	switch {
	case top < l.vp.YOffset:
		l.scroller.SetTop(top)
	case bottom > l.vp.YOffset+l.vp.Height:
		l.scroller.SetTop(min(top, bottom-l.vp.Height))
	}
	l.observe()
}

func (l *MessageList) selectedMessage() (kai.Message, bool) {
	for _, it := range l.state.Items {
		if m, ok := it.(kai.Message); ok && m.ID == l.selected {
			return m, true
		}
	}
	return kai.Message{}, false
}

func (l *MessageList) isMine(m kai.Message) bool {
	return l.currentUserID != "" && m.SenderID == l.currentUserID
}

// render lays out the current state and settles any pending scroll plan.
func (l *MessageList) render() {
	if l.width <= 0 {
		return
	}
	l.vp.SetContent(l.content())
	l.ctrl.Settle(l.scroller)
	l.observe()
}

func (l *MessageList) observe() {
	m := l.scroller.Metrics()
	l.top.Update(m)
	l.bottom.Update(m)
}

func (l *MessageList) renderContext() *renderContext {
	return &renderContext{
		styles:        l.styles,
		i18n:          l.i18n,
		features:      l.features,
		currentUserID: l.currentUserID,
		markdown:      l.renderMarkdown,
		zones:         l.zones,
	}
}

func (l *MessageList) renderMarkdown(source string, width int) string {
	k := mdKey{source: source, width: width}
	if s, ok := l.mdCache[k]; ok {
		return s
	}
	s := strings.TrimRight(l.markdown.Render(source, width), "\n")
	l.mdCache[k] = s
	return s
}

// blocks builds the rows of the list in display order.
func (l *MessageList) blocks(rc *renderContext) []Block {
	blocks := make([]Block, 0, len(l.state.Items)+2)
	var prevSender string
	for _, it := range l.state.Items {
		switch it := it.(type) {
		case kai.Message:
			view := MessageView{
				Mine:     l.isMine(it),
				Header:   it.SenderID != prevSender,
				Selected: l.focused && it.ID == l.selected,
				Replying: l.state.ReplyTo != nil && l.state.ReplyTo.MessageID == it.ID,
			}
			blocks = append(blocks, NewMessageBlock(it, view, rc))
			prevSender = it.SenderID
		case kai.Divider:
			blocks = append(blocks, NewDividerBlock(it, l.styles))
			prevSender = ""
		}
	}
	if l.state.IsTyping {
		blocks = append(blocks, NewTypingBlock(l.i18n.Typing, l.styles))
	}
	if len(l.state.Suggestions) > 0 {
		blocks = append(blocks, NewSuggestionBlock(l.state.Suggestions, rc))
	}
	return blocks
}

func (l *MessageList) content() string {
	s := l.styles
	clear(l.offsets)
	switch {
	case l.state.IsLoading:
		return lipgloss.Place(l.width, l.vp.Height, lipgloss.Center, lipgloss.Center, s.Muted.Render(l.i18n.Loading))
	case len(l.state.Items) == 0 && !l.state.IsTyping && len(l.state.Suggestions) == 0:
		return lipgloss.Place(l.width, l.vp.Height, lipgloss.Center, lipgloss.Center, s.Muted.Render(l.i18n.NoMessages))
	}

	var b strings.Builder
	line := 0
	blocks := l.blocks(l.renderContext())
	n := 0
	for i, block := range blocks {
		if i > 0 {
			sep := blockSeparator(blocks[i-1], block)
			b.WriteString(sep)
			line += strings.Count(sep, "\n")
		}
		if n < len(l.state.Items) {
			l.offsets[l.state.Items[n].ItemID()] = line
			n++
		}
		v := block.View(l.width)
		b.WriteString(v)
		line += strings.Count(v, "\n")
	}
	return b.String()
}

// View renders the list and its status line.
func (l *MessageList) View() string {
	body := l.vp.View()
	if l.palette != paletteNone {
		body = l.paletteView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, l.statusLine())
}

func (l *MessageList) statusLine() string {
	s := l.styles
	var parts []string
	// Shown here rather than above the items so the rows in view stay put
	// while a page is in flight.
	if l.state.IsLoadingMore {
		parts = append(parts, s.Muted.Render(l.i18n.LoadingMore))
	}
	if l.ctrl.Notification() {
		parts = append(parts, l.mark(badgeZone, s.Badge.Render("● "+l.i18n.NewMessageNotification)))
	}
	if l.ctrl.ShowScrollButton() {
		parts = append(parts, l.mark(buttonZone, s.Accent.Render("↓ "+l.i18n.ScrollToBottom)))
	}
	return lipgloss.NewStyle().Width(l.width).Align(lipgloss.Right).Render(strings.Join(parts, " "))
}

func (l *MessageList) paletteView() string {
	s := l.styles
	var lines []string
	switch l.palette {
	case paletteEmoji:
		items := make([]string, len(emojiPalette))
		for i, e := range emojiPalette {
			items[i] = s.Muted.Render(string(rune('1'+i))) + " " + e
		}
		lines = append(lines, strings.Join(items, "  "))
	case paletteActions:
		if m, ok := l.selectedMessage(); ok {
			for i, a := range l.actionsFor(m) {
				lines = append(lines, s.Muted.Render(string(rune('1'+i)))+" "+a.Label)
			}
		}
	}
	lines = append(lines, s.Muted.Render(l.i18n.CloseHint))
	box := s.Dialog.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(l.width, l.vp.Height, lipgloss.Center, lipgloss.Center, box)
}

func (l *MessageList) mark(id, v string) string {
	if l.zones == nil {
		return v
	}
	return l.zones.Mark(id, v)
}
