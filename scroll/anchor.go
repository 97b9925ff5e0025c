package scroll

import (
	"log/slog"

	"github.com/fwojciec/kai"
)

// Action is what the controller does to the viewport for a mutation.
type Action int

const (
	ActionNone Action = iota
	ActionJumpToBottom
	ActionPreserveAnchor
	ActionScrollToBottom
	ActionNotify
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionJumpToBottom:
		return "jump-to-bottom"
	case ActionPreserveAnchor:
		return "preserve-anchor"
	case ActionScrollToBottom:
		return "scroll-to-bottom"
	case ActionNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Mode selects how a scroll to bottom moves.
type Mode int

const (
	Instant Mode = iota
	Smooth
)

// Scroller is the scroll container the controller drives.
type Scroller interface {
	Metrics() Metrics
	SetTop(top int)
	ScrollToBottom(mode Mode)
}

type transition struct {
	kind       MutationKind
	nearBottom bool
	fromSelf   bool
}

// transitions is the complete anchoring policy.
var transitions = map[transition]Action{
	{NoStructuralChange, false, false}: ActionNone,
	{NoStructuralChange, false, true}:  ActionNone,
	{NoStructuralChange, true, false}:  ActionNone,
	{NoStructuralChange, true, true}:   ActionNone,

	{RoomChanged, false, false}: ActionJumpToBottom,
	{RoomChanged, false, true}:  ActionJumpToBottom,
	{RoomChanged, true, false}:  ActionJumpToBottom,
	{RoomChanged, true, true}:   ActionJumpToBottom,

	{PrependedOlder, false, false}: ActionPreserveAnchor,
	{PrependedOlder, false, true}:  ActionPreserveAnchor,
	{PrependedOlder, true, false}:  ActionPreserveAnchor,
	{PrependedOlder, true, true}:   ActionPreserveAnchor,

	{AppendedNewer, false, false}: ActionNotify,
	{AppendedNewer, false, true}:  ActionScrollToBottom,
	{AppendedNewer, true, false}:  ActionScrollToBottom,
	{AppendedNewer, true, true}:   ActionScrollToBottom,
}

// plan is a scroll side effect waiting for layout.
type plan struct {
	action Action
	anchor Metrics // pre-mutation metrics for ActionPreserveAnchor
}

// Controller decides what happens to the viewport on every list mutation
// and owns the notification badge and scroll button state.
//
// Begin runs before the new items are laid out and Settle after, so the
// anchor is computed from pre- and post-layout heights. A Controller is
// not safe for concurrent use.
type Controller struct {
	logger        *slog.Logger
	currentUserID string

	loading    bool
	notify     bool
	showButton bool
	pending    *plan
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCurrentUser sets the id whose messages always scroll to bottom.
func (c *Controller) SetCurrentUser(id string) {
	c.currentUserID = id
}

// Begin classifies m against the metrics measured before the mutation was
// rendered and records the scroll plan. Calls before the next Settle
// coalesce: the first anchor capture is kept so successive prepends
// compose, a room change discards any capture, and scrolling to bottom
// wins over restoring an anchor.
func (c *Controller) Begin(m Mutation, before Metrics) Action {
	t := transition{
		kind:       m.Kind,
		nearBottom: before.NearBottom(),
		fromSelf:   c.isOwn(m.Newest),
	}
	if m.Inconsistent {
		t.nearBottom, t.fromSelf = false, false
	}
	act := transitions[t]
	c.logger.Debug("scroll plan",
		"mutation", m.Kind, "near_bottom", t.nearBottom, "from_self", t.fromSelf,
		"inconsistent", m.Inconsistent, "action", act)

	switch act {
	case ActionJumpToBottom:
		c.notify = false
		c.pending = &plan{action: ActionJumpToBottom}
	case ActionPreserveAnchor:
		if c.pending == nil {
			c.pending = &plan{action: ActionPreserveAnchor, anchor: before}
		}
	case ActionScrollToBottom:
		if c.pending == nil || c.pending.action == ActionPreserveAnchor {
			c.pending = &plan{action: ActionScrollToBottom}
		}
	case ActionNotify:
		c.notify = true
	}
	return act
}

// Pending reports whether a plan is waiting for Settle.
func (c *Controller) Pending() bool {
	return c.pending != nil
}

// Settle applies the pending plan. It must run after the mutation has been
// laid out so s reports the new content height.
func (c *Controller) Settle(s Scroller) {
	p := c.pending
	c.pending = nil
	if p == nil {
		return
	}
	switch p.action {
	case ActionJumpToBottom:
		s.ScrollToBottom(Instant)
	case ActionScrollToBottom:
		c.notify = false
		s.ScrollToBottom(Smooth)
	case ActionPreserveAnchor:
		after := s.Metrics()
		s.SetTop(p.anchor.Top + (after.Height - p.anchor.Height))
	}
}

// ScrollToBottom scrolls on request of the viewer, dropping any pending
// plan and the notification.
func (c *Controller) ScrollToBottom(s Scroller, mode Mode) {
	c.pending = nil
	c.notify = false
	s.ScrollToBottom(mode)
}

// OnBottomVisible tracks the bottom sentinel. Reaching the bottom clears
// the notification. Reports while loading are ignored.
func (c *Controller) OnBottomVisible(visible bool) {
	if c.loading {
		return
	}
	c.showButton = !visible
	if visible {
		c.notify = false
	}
}

// SetLoading mirrors the first-paint loading state.
func (c *Controller) SetLoading(loading bool) {
	c.loading = loading
}

// Notification reports whether the new message badge is raised.
func (c *Controller) Notification() bool {
	return c.notify
}

// ShowScrollButton reports whether the scroll-to-bottom button is shown.
func (c *Controller) ShowScrollButton() bool {
	return c.showButton && !c.loading
}

func (c *Controller) isOwn(it kai.Item) bool {
	m, ok := it.(kai.Message)
	return ok && c.currentUserID != "" && m.SenderID == c.currentUserID
}
