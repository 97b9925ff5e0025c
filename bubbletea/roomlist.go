package bubbletea

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	"github.com/fwojciec/kai/scroll"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
)

const (
	roomRows      = 2 // lines per room entry
	sidebarHeader = 2 // title and search lines
	addRoomZone   = "add-room"
)

// RoomList is the sidebar: a search input above a paginated list of rooms.
type RoomList struct {
	d     *dispatcher
	keys  *keyMap
	zones *zone.Manager

	state    kai.RoomState
	i18n     kai.I18n
	styles   Styles
	features kai.Features

	vp        viewport.Model
	search    textinput.Model
	searching bool
	menu      bool
	focused   bool
	cursor    int
	width     int

	sentinel *scroll.LineSentinel
	gate     *scroll.Gate
}

func newRoomList(b *bus.Bus, d *dispatcher, keys *keyMap, zones *zone.Manager, gateOpts []scroll.GateOption) *RoomList {
	ti := textinput.New()
	ti.Prompt = "⌕ "
	ti.CharLimit = 0

	l := &RoomList{
		d:        d,
		keys:     keys,
		zones:    zones,
		vp:       viewport.New(0, 0),
		search:   ti,
		sentinel: scroll.NewLineSentinel(scroll.EdgeBottom),
	}
	l.vp.KeyMap = viewport.KeyMap{}
	l.gate = scroll.NewGate(kai.TargetRooms, d.emit, gateOpts...)
	l.sentinel.Observe(l.onBottomVisible)

	bus.Subscribe(b, I18nKey, func(next, _ kai.I18n) {
		l.i18n = next
		l.search.Placeholder = next.SearchPlaceholder
		l.render()
	})
	bus.Subscribe(b, ThemeKey, func(next, _ kai.Theme) {
		l.styles = NewStyles(next)
		l.search.PromptStyle = l.styles.Muted
		l.render()
	})
	bus.Subscribe(b, FeaturesKey, func(next, _ kai.Features) {
		l.features = next
		l.render()
	})
	bus.Subscribe(b, RoomKey, l.onRooms)
	return l
}

func (l *RoomList) onRooms(next, prev kai.RoomState) {
	l.gate.SetLoading(next.IsLoading)
	switch {
	case len(next.Rooms) > len(prev.Rooms):
		l.gate.OnSnapshotReceived(kai.Bottom)
	case len(next.Rooms) < len(prev.Rooms):
		l.gate.Reset()
	}
	if prev.IsLoadingMore && !next.IsLoadingMore {
		l.gate.OnSnapshotReceived(kai.Bottom)
	}
	l.state = next
	if l.cursor >= len(next.Rooms) || (len(prev.Rooms) == 0 && len(next.Rooms) > 0) {
		l.cursor = max(0, l.selectedIndex())
	}
	if len(next.Actions) == 0 {
		l.menu = false
	}
	l.render()
	// A short page leaves the sentinel visible without a transition.
	if len(next.Rooms) > len(prev.Rooms) && l.sentinel.Visible() {
		l.onBottomVisible(true)
	}
}

func (l *RoomList) onBottomVisible(visible bool) {
	if !visible || !l.state.HasMore || len(l.state.Rooms) == 0 {
		return
	}
	if t, ok := l.gate.OnSentinelVisible(kai.Bottom); ok {
		l.d.expire(kai.TargetRooms, t)
	}
}

// SetSize lays the list out in a column of width w and height h.
func (l *RoomList) SetSize(w, h int) {
	l.width = w
	l.search.Width = max(1, w-4)
	l.vp.Width = w
	l.vp.Height = max(1, h-sidebarHeader)
	l.render()
}

// SetFocused moves keyboard focus to or from the list.
func (l *RoomList) SetFocused(focused bool) {
	l.focused = focused
	if !focused {
		l.stopSearch()
		l.menu = false
	}
	l.render()
}

// Searching reports whether the search input has focus.
func (l *RoomList) Searching() bool { return l.searching }

// Update handles a key while the list has focus.
func (l *RoomList) Update(msg tea.KeyMsg) tea.Cmd {
	if l.searching {
		return l.updateSearch(msg)
	}
	if l.menu {
		l.updateMenu(msg)
		return nil
	}
	switch {
	case key.Matches(msg, l.keys.Up):
		l.moveCursor(-1)
	case key.Matches(msg, l.keys.Down):
		l.moveCursor(1)
	case key.Matches(msg, l.keys.Open):
		if r, ok := l.cursorRoom(); ok {
			l.d.emit(kai.EventSelectRoom{Room: r})
		}
	case key.Matches(msg, l.keys.Search):
		l.searching = true
		return l.search.Focus()
	case key.Matches(msg, l.keys.AddRoom):
		l.d.emit(kai.EventAddRoom{})
	case key.Matches(msg, l.keys.Actions):
		if _, ok := l.cursorRoom(); ok && len(l.state.Actions) > 0 {
			l.menu = true
			l.render()
		}
	}
	return nil
}

func (l *RoomList) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		l.stopSearch()
		return nil
	}
	before := l.search.Value()
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if v := l.search.Value(); v != before {
		l.d.emit(kai.EventSearchRoom{Value: v})
	}
	return cmd
}

func (l *RoomList) stopSearch() {
	l.searching = false
	l.search.Blur()
}

func (l *RoomList) updateMenu(msg tea.KeyMsg) {
	defer l.render()
	if key.Matches(msg, l.keys.Cancel) {
		l.menu = false
		return
	}
	i := digit(msg.String())
	r, ok := l.cursorRoom()
	if i < 0 || i >= len(l.state.Actions) || !ok {
		return
	}
	l.menu = false
	l.d.emit(kai.EventSelectAction{Type: kai.ActionRoom, Action: l.state.Actions[i], RoomID: r.ID})
}

// Scroll forwards a mouse wheel event to the list.
func (l *RoomList) Scroll(msg tea.MouseMsg) {
	l.vp, _ = l.vp.Update(msg)
	l.observe()
}

// Click resolves a mouse click on a room or the add button. It reports
// whether the click hit the list.
func (l *RoomList) Click(msg tea.MouseMsg) bool {
	if l.zones == nil {
		return false
	}
	if l.zones.Get(addRoomZone).InBounds(msg) {
		l.d.emit(kai.EventAddRoom{})
		return true
	}
	for i, r := range l.state.Rooms {
		if l.zones.Get(roomZone(r.ID)).InBounds(msg) {
			l.cursor = i
			l.d.emit(kai.EventSelectRoom{Room: r})
			l.render()
			return true
		}
	}
	return false
}

func (l *RoomList) moveCursor(delta int) {
	if len(l.state.Rooms) == 0 {
		return
	}
	l.cursor = max(0, min(len(l.state.Rooms)-1, l.cursor+delta))
	top := l.cursor * roomRows
	switch {
	case top < l.vp.YOffset:
		l.vp.SetYOffset(top)
	case top+roomRows > l.vp.YOffset+l.vp.Height:
		l.vp.SetYOffset(top + roomRows - l.vp.Height)
	}
	l.render()
}

func (l *RoomList) cursorRoom() (kai.Room, bool) {
	if l.cursor < 0 || l.cursor >= len(l.state.Rooms) {
		return kai.Room{}, false
	}
	return l.state.Rooms[l.cursor], true
}

func (l *RoomList) selectedIndex() int {
	for i, r := range l.state.Rooms {
		if r.ID == l.state.SelectedRoomID {
			return i
		}
	}
	return 0
}

// render rebuilds the viewport content and re-measures the sentinel.
func (l *RoomList) render() {
	if l.width <= 0 {
		return
	}
	l.vp.SetContent(l.content())
	l.observe()
}

func (l *RoomList) observe() {
	l.sentinel.Update(scroll.Metrics{
		Top:          l.vp.YOffset,
		Height:       l.vp.TotalLineCount(),
		ClientHeight: l.vp.Height,
	})
}

func (l *RoomList) content() string {
	s := l.styles
	switch {
	case l.state.IsLoading:
		return s.Muted.Render(l.i18n.Loading)
	case len(l.state.Rooms) == 0:
		return s.Muted.Render(l.i18n.NoRooms)
	}
	var b strings.Builder
	for i, r := range l.state.Rooms {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l.mark(roomZone(r.ID), l.entry(i, r)))
	}
	if l.state.IsLoadingMore {
		b.WriteString("\n" + s.Muted.Render(l.i18n.LoadingMore))
	}
	return b.String()
}

// entry renders the two lines of one room.
func (l *RoomList) entry(i int, r kai.Room) string {
	s := l.styles
	gutter := "  "
	switch {
	case l.focused && i == l.cursor:
		gutter = s.Highlight.Render("›") + " "
	case r.ID == l.state.SelectedRoomID:
		gutter = s.Selected.Render("▌") + " "
	}
	avail := max(1, l.width-2)

	var prefix string
	if l.features.RoomAvatar {
		prefix = avatar(r.Title) + " "
	}
	meta := ""
	if r.Meta != "" {
		meta = " " + r.Meta
	}
	titleWidth := max(1, avail-runewidth.StringWidth(prefix)-runewidth.StringWidth(meta))
	title := runewidth.Truncate(r.Title, titleWidth, "…")
	titleStyle := lipgloss.NewStyle()
	if r.ID == l.state.SelectedRoomID {
		titleStyle = s.Selected
	}
	pad := strings.Repeat(" ", max(0, titleWidth-runewidth.StringWidth(title)))
	line1 := gutter + prefix + titleStyle.Render(title) + pad + s.Muted.Render(meta)

	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
	sub := runewidth.Truncate(r.Subtitle, max(1, avail-len(indent)), "…")
	line2 := "  " + indent + s.Muted.Render(sub)
	return line1 + "\n" + line2
}

func (l *RoomList) mark(id, v string) string {
	if l.zones == nil {
		return v
	}
	return l.zones.Mark(id, v)
}

// View renders the sidebar column.
func (l *RoomList) View() string {
	s := l.styles
	title := s.Accent.Render("Rooms")
	add := l.mark(addRoomZone, s.Muted.Render("[+]"))
	gap := strings.Repeat(" ", max(1, l.width-lipgloss.Width(title)-lipgloss.Width(add)))
	header := title + gap + add

	var body string
	if l.menu {
		body = l.menuView()
	} else {
		body = l.vp.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, l.search.View(), body)
}

func (l *RoomList) menuView() string {
	lines := make([]string, 0, len(l.state.Actions)+1)
	if r, ok := l.cursorRoom(); ok {
		lines = append(lines, l.styles.Accent.Render(runewidth.Truncate(r.Title, max(1, l.width), "…")))
	}
	for i, a := range l.state.Actions {
		lines = append(lines, l.styles.Muted.Render(strconv.Itoa(i+1))+" "+a.Label)
	}
	return lipgloss.NewStyle().Height(l.vp.Height).Render(strings.Join(lines, "\n"))
}

func roomZone(id string) string {
	return "room:" + id
}
