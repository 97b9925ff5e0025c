package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
	"github.com/fwojciec/kai/scroll"
	zone "github.com/lrstanley/bubblezone"
)

var _ tea.Model = Model{}

const (
	headerHeight = 1
	statusHeight = 1
	maxSidebar   = 30
)

// Model is the root Bubble Tea model of the chat widget. It owns the
// channel bus and the only writer of every channel, maps host updates to
// publishes and dispatches widget events to the host.
type Model struct {
	bus    *bus.Bus
	ch     *channels
	d      *dispatcher
	keys   *keyMap
	help   help.Model
	zones  *zone.Manager
	logger *slog.Logger
	lay    *layout

	sidebar  *RoomList
	messages *MessageList
	footer   *Footer
	dialog   *Dialog

	focus  pane
	err    error
	width  int
	height int
	ready  bool
}

// layout holds root state fed by channel subscriptions.
type layout struct {
	styles  Styles
	sidebar bool
	single  bool
	room    kai.Room
	hasRoom bool
	changed bool // sidebar geometry must be recomputed
}

// Option configures a Model.
type Option func(*options)

type options struct {
	ctx         context.Context
	logger      *slog.Logger
	metrics     kai.Metrics
	theme       kai.Theme
	gateTimeout time.Duration
	mouse       bool
}

// WithContext sets the context passed to every host call.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger sets the logger. Stdout belongs to the TUI, so the logger
// should write elsewhere.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink for channels and pagination.
func WithMetrics(m kai.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTheme sets the initial theme.
func WithTheme(t kai.Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithGateTimeout sets how long a load-more request may stay unanswered.
// Zero disables the timeout.
func WithGateTimeout(d time.Duration) Option {
	return func(o *options) { o.gateTimeout = d }
}

// WithoutMouse disables click zones.
func WithoutMouse() Option {
	return func(o *options) { o.mouse = false }
}

// New creates the root model. Events are delivered to host.
func New(host kai.Host, opts ...Option) Model {
	o := options{
		ctx:         context.Background(),
		logger:      slog.New(slog.DiscardHandler),
		metrics:     kai.NopMetrics{},
		theme:       kai.DarkTheme(),
		gateTimeout: scroll.DefaultTimeout,
		mouse:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	b := bus.New(bus.WithLogger(o.logger), bus.WithMetrics(o.metrics))
	d := &dispatcher{ctx: o.ctx, host: host, logger: o.logger}
	keys := defaultKeyMap()
	var zones *zone.Manager
	if o.mouse {
		zones = zone.New()
	}
	gateOpts := []scroll.GateOption{
		scroll.WithTimeout(o.gateTimeout),
		scroll.WithGateLogger(o.logger),
		scroll.WithGateMetrics(o.metrics),
	}

	m := Model{
		bus:    b,
		ch:     provideChannels(b, o.theme, o.logger),
		d:      d,
		keys:   &keys,
		help:   help.New(),
		zones:  zones,
		logger: o.logger,
		lay:    &layout{},
		focus:  paneFooter,
	}
	m.sidebar = newRoomList(b.Scope(), d, m.keys, zones, gateOpts)
	m.messages = newMessageList(b.Scope(), d, m.keys, zones, o.logger, gateOpts)
	m.footer = newFooter(b.Scope(), d, m.keys, zones)
	m.dialog = newDialog(b.Scope(), d, m.keys, zones)
	m.footer.Focus()

	lay := m.lay
	bus.Subscribe(b, ThemeKey, func(next, _ kai.Theme) {
		lay.styles = NewStyles(next)
	})
	bus.Subscribe(b, SidebarKey, func(next, prev bool) {
		lay.sidebar = next
		lay.changed = lay.changed || next != prev
	})
	bus.Subscribe(b, FeaturesKey, func(next, prev kai.Features) {
		lay.single = next.SingleRoom
		lay.changed = lay.changed || next.SingleRoom != prev.SingleRoom
	})
	bus.Subscribe(b, RoomKey, func(next, _ kai.RoomState) {
		lay.room, lay.hasRoom = next.SelectedRoom()
	})
	lay.changed = false
	return m
}

// Err returns the last host error, if any.
func (m Model) Err() error { return m.err }

// Focus returns the name of the focused pane.
func (m Model) Focus() string {
	switch m.focus {
	case paneSidebar:
		return "sidebar"
	case paneMessages:
		return "messages"
	default:
		return "footer"
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case UpdateMsg:
		m = m.apply(msg.Update)

	case HostResultMsg:
		m = m.handleResult(msg)

	case expireMsg:
		switch msg.target {
		case kai.TargetRooms:
			m.sidebar.gate.Expire(msg.ticket)
		default:
			m.messages.Expire(msg.ticket)
		}

	case frameMsg:
		m.messages.Frame(msg)

	default:
		// Cursor blinks and other component messages.
		cmd = m.footer.Forward(msg)
	}

	if m.lay.changed {
		m.lay.changed = false
		m = m.relayout()
	}
	return m, batch(cmd, m.d.flush())
}

func batch(a, b tea.Cmd) tea.Cmd {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return tea.Batch(a, b)
}

func (m Model) apply(u kai.Update) Model {
	if err := m.ch.apply(u); err != nil {
		m.logger.Warn("update rejected", "update", fmt.Sprintf("%T", u), "error", err)
		m.err = err
	}
	return m
}

func (m Model) handleResult(msg HostResultMsg) Model {
	// The gate reopens before the updates apply: applying a short page may
	// arm the next request, which must stay outstanding.
	if msg.Err != nil || len(msg.Updates) > 0 {
		m.answered(msg.Event)
	}
	if msg.Err != nil {
		if !errors.Is(msg.Err, context.Canceled) {
			m.logger.Error("host failed to handle event", "event", msg.Event.Name(), "error", msg.Err)
			m.err = fmt.Errorf("%s: %w", msg.Event.Name(), msg.Err)
		}
		return m
	}
	m.err = nil
	for _, u := range msg.Updates {
		m = m.apply(u)
	}
	return m
}

// answered reopens the gate of a load-more event the host has responded to.
func (m Model) answered(e kai.Event) {
	switch e := e.(type) {
	case kai.EventLoadMore:
		m.messages.gate.OnSnapshotReceived(e.Direction)
	case kai.EventLoadMoreRooms:
		m.sidebar.gate.OnSnapshotReceived(kai.Bottom)
	}
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	m.ready = true
	return m.relayout()
}

func (m Model) sidebarShown() bool {
	return m.lay.sidebar && !m.lay.single
}

func (m Model) sidebarWidth() int {
	if !m.sidebarShown() {
		return 0
	}
	return min(maxSidebar, m.width/3)
}

// relayout distributes the window between the panes.
func (m Model) relayout() Model {
	if !m.ready {
		return m
	}
	sw := m.sidebarWidth()
	mainW := m.width
	if sw > 0 {
		mainW = max(1, m.width-sw-1)
		m.sidebar.SetSize(sw, m.height-statusHeight)
	} else if m.focus == paneSidebar {
		m = m.setFocus(paneFooter)
	}
	m.messages.SetSize(mainW, max(2, m.height-headerHeight-footerHeight-statusHeight))
	m.footer.SetWidth(mainW)
	m.help.Width = m.width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.dialog.Active() {
		m.dialog.Update(msg)
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.ToggleSidebar):
		if !m.lay.single {
			visible := !m.lay.sidebar
			m.ch.sidebar.Publish(visible)
			m.d.emit(kai.EventToggleSidebar{Visible: visible})
		}
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		return m.cycleFocus(msg.Type == tea.KeyShiftTab), nil
	}

	switch m.focus {
	case paneSidebar:
		return m, m.sidebar.Update(msg)
	case paneMessages:
		m.messages.Update(msg)
		return m, nil
	default:
		return m, m.footer.Update(msg)
	}
}

func (m Model) cycleFocus(reverse bool) Model {
	order := []pane{paneMessages, paneFooter}
	if m.sidebarShown() {
		order = []pane{paneSidebar, paneMessages, paneFooter}
	}
	i := 0
	for j, p := range order {
		if p == m.focus {
			i = j
		}
	}
	step := 1
	if reverse {
		step = len(order) - 1
	}
	return m.setFocus(order[(i+step)%len(order)])
}

func (m Model) setFocus(p pane) Model {
	m.focus = p
	m.sidebar.SetFocused(p == paneSidebar)
	m.messages.SetFocused(p == paneMessages)
	if p == paneFooter {
		m.d.push(m.footer.Focus())
	} else {
		m.footer.Blur()
	}
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionPress {
		return m
	}
	if tea.MouseEvent(msg).IsWheel() {
		if m.sidebarShown() && msg.X < m.sidebarWidth() {
			m.sidebar.Scroll(msg)
		} else {
			m.messages.Scroll(msg)
		}
		return m
	}
	if msg.Button != tea.MouseButtonLeft {
		return m
	}
	if m.dialog.Active() {
		m.dialog.Click(msg)
		return m
	}
	switch {
	case m.sidebarShown() && m.sidebar.Click(msg):
		m = m.setFocus(paneSidebar)
	case m.messages.Click(msg):
	case m.footer.Click(msg):
	}
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	bodyH := m.height - statusHeight

	var body string
	if m.dialog.Active() {
		body = m.dialog.View(m.width, bodyH)
	} else {
		main := lipgloss.JoinVertical(lipgloss.Left, m.header(), m.messages.View(), m.footer.View())
		if sw := m.sidebarWidth(); sw > 0 {
			side := lipgloss.NewStyle().Width(sw).Height(bodyH).MaxHeight(bodyH).Render(m.sidebar.View())
			sep := m.lay.styles.Muted.Render(strings.Repeat("│\n", max(0, bodyH-1)) + "│")
			body = lipgloss.JoinHorizontal(lipgloss.Top, side, sep, main)
		} else {
			body = main
		}
	}
	view := lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())
	if m.zones != nil {
		return m.zones.Scan(view)
	}
	return view
}

func (m Model) header() string {
	s := m.lay.styles
	if !m.lay.hasRoom {
		return s.Accent.Render("kai")
	}
	h := s.Accent.Render(m.lay.room.Title)
	if m.lay.room.Subtitle != "" {
		h += "  " + s.Muted.Render(m.lay.room.Subtitle)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(h)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(m.lay.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return m.help.ShortHelpView(m.keys.paneHelp(m.focus))
}
