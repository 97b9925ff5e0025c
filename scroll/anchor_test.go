package scroll_test

import (
	"testing"

	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/mock"
	"github.com/fwojciec/kai/scroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// viewport is a scroll container whose content height the test controls.
type viewport struct {
	metrics scroll.Metrics
	scrolls []scroll.Mode
}

func (v *viewport) scroller() *mock.Scroller {
	return &mock.Scroller{
		MetricsFn: func() scroll.Metrics { return v.metrics },
		SetTopFn: func(top int) {
			v.metrics.Top = min(max(0, top), v.metrics.MaxTop())
		},
		ScrollToBottomFn: func(mode scroll.Mode) {
			v.scrolls = append(v.scrolls, mode)
			v.metrics.Top = v.metrics.MaxTop()
		},
	}
}

func TestController_PrependPreservesAnchor(t *testing.T) {
	t.Parallel()

	// 20 items scrolled to the top; 10 older items grow the content from
	// 4000 to 5800 rows.
	v := &viewport{metrics: scroll.Metrics{Top: 0, Height: 4000, ClientHeight: 600}}
	c := scroll.NewController()

	prev := msgs("r1", 10, 30)
	next := msgs("r1", 0, 30)
	act := c.Begin(scroll.Reconcile(prev, next), v.metrics)
	require.Equal(t, scroll.ActionPreserveAnchor, act)

	v.metrics.Height = 5800
	c.Settle(v.scroller())

	assert.Equal(t, 1800, v.metrics.Top)
	assert.Empty(t, v.scrolls)
	assert.False(t, c.Pending())
}

func TestController_PrependAnchorIndependentOfCount(t *testing.T) {
	t.Parallel()

	for _, grow := range []int{1, 7, 250, 3000} {
		v := &viewport{metrics: scroll.Metrics{Top: 37, Height: 1000, ClientHeight: 20}}
		c := scroll.NewController()
		c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
		v.metrics.Height += grow
		c.Settle(v.scroller())
		assert.Equal(t, 37+grow, v.metrics.Top, "grow=%d", grow)
	}
}

func TestController_SuccessivePrependsCompose(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 5, Height: 100, ClientHeight: 20}}
	c := scroll.NewController()

	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	v.metrics.Height = 150
	// Second prepend arrives before the first settled; its metrics are
	// already stale.
	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	v.metrics.Height = 210
	c.Settle(v.scroller())

	assert.Equal(t, 5+210-100, v.metrics.Top)
}

func TestController_RoomChangeJumpsAndClearsBadge(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 0, Height: 500, ClientHeight: 20}}
	c := scroll.NewController()
	c.SetCurrentUser("me")

	c.Begin(scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{ID: "x", SenderID: "other"}}, v.metrics)
	require.True(t, c.Notification())

	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	act := c.Begin(scroll.Mutation{Kind: scroll.RoomChanged}, v.metrics)
	assert.Equal(t, scroll.ActionJumpToBottom, act)
	assert.False(t, c.Notification())

	v.metrics.Height = 300
	c.Settle(v.scroller())
	assert.Equal(t, []scroll.Mode{scroll.Instant}, v.scrolls)
	assert.Equal(t, 280, v.metrics.Top)
}

func TestController_AppendFromOtherWhileScrolledUpNotifies(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 100, Height: 1000, ClientHeight: 50}}
	c := scroll.NewController()
	c.SetCurrentUser("me")
	c.OnBottomVisible(false)

	prev := msgs("r1", 0, 20)
	next := append(append([]kai.Item(nil), prev...), kai.Message{ID: "new", RoomID: "r1", SenderID: "other"})
	act := c.Begin(scroll.Reconcile(prev, next), v.metrics)
	v.metrics.Height = 1010
	c.Settle(v.scroller())

	assert.Equal(t, scroll.ActionNotify, act)
	assert.True(t, c.Notification())
	assert.True(t, c.ShowScrollButton())
	assert.Equal(t, 100, v.metrics.Top)
	assert.Empty(t, v.scrolls)
}

func TestController_OwnAppendScrollsSmoothly(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 100, Height: 1000, ClientHeight: 50}}
	c := scroll.NewController()
	c.SetCurrentUser("me")
	c.OnBottomVisible(false)

	prev := msgs("r1", 0, 20)
	next := append(append([]kai.Item(nil), prev...), kai.Message{ID: "new", RoomID: "r1", SenderID: "me"})
	act := c.Begin(scroll.Reconcile(prev, next), v.metrics)
	v.metrics.Height = 1010
	c.Settle(v.scroller())

	assert.Equal(t, scroll.ActionScrollToBottom, act)
	assert.False(t, c.Notification())
	assert.Equal(t, []scroll.Mode{scroll.Smooth}, v.scrolls)
	assert.Equal(t, 960, v.metrics.Top)
}

func TestController_AppendNearBottomScrolls(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 930, Height: 1000, ClientHeight: 50}}
	c := scroll.NewController()

	act := c.Begin(scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{SenderID: "other"}}, v.metrics)
	c.Settle(v.scroller())

	assert.Equal(t, scroll.ActionScrollToBottom, act)
	assert.False(t, c.Notification())
	assert.Equal(t, []scroll.Mode{scroll.Smooth}, v.scrolls)
}

func TestController_InconsistentAppendNeverScrolls(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 950, Height: 1000, ClientHeight: 50}}
	c := scroll.NewController()
	c.SetCurrentUser("me")

	m := scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{SenderID: "me"}, Inconsistent: true}
	act := c.Begin(m, v.metrics)
	c.Settle(v.scroller())

	assert.Equal(t, scroll.ActionNotify, act)
	assert.Empty(t, v.scrolls)
}

func TestController_NoStructuralChangeDoesNothing(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 10, Height: 1000, ClientHeight: 50}}
	c := scroll.NewController()

	act := c.Begin(scroll.Mutation{Kind: scroll.NoStructuralChange}, v.metrics)
	c.Settle(v.scroller())

	assert.Equal(t, scroll.ActionNone, act)
	assert.False(t, c.Pending())
	assert.Equal(t, 10, v.metrics.Top)
}

func TestController_ScrollToBottomWinsOverAnchor(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 0, Height: 100, ClientHeight: 50}}
	c := scroll.NewController()
	c.SetCurrentUser("me")

	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	c.Begin(scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{SenderID: "me"}}, v.metrics)
	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	v.metrics.Height = 300
	c.Settle(v.scroller())

	assert.Equal(t, []scroll.Mode{scroll.Smooth}, v.scrolls)
	assert.Equal(t, 250, v.metrics.Top)
}

func TestController_BottomVisibleClearsBadgeAndButton(t *testing.T) {
	t.Parallel()

	c := scroll.NewController()
	c.OnBottomVisible(false)
	c.Begin(scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{SenderID: "other"}},
		scroll.Metrics{Top: 0, Height: 1000, ClientHeight: 10})
	require.True(t, c.Notification())
	require.True(t, c.ShowScrollButton())

	c.OnBottomVisible(true)

	assert.False(t, c.Notification())
	assert.False(t, c.ShowScrollButton())
}

func TestController_LoadingSuppressesButton(t *testing.T) {
	t.Parallel()

	c := scroll.NewController()
	c.OnBottomVisible(false)
	c.SetLoading(true)
	assert.False(t, c.ShowScrollButton())

	// Reports while loading are ignored.
	c.OnBottomVisible(true)
	c.SetLoading(false)
	assert.True(t, c.ShowScrollButton())
}

func TestController_ManualScrollToBottom(t *testing.T) {
	t.Parallel()

	v := &viewport{metrics: scroll.Metrics{Top: 0, Height: 1000, ClientHeight: 10}}
	c := scroll.NewController()
	c.Begin(scroll.Mutation{Kind: scroll.AppendedNewer, Newest: kai.Message{SenderID: "other"}}, v.metrics)
	c.Begin(scroll.Mutation{Kind: scroll.PrependedOlder}, v.metrics)
	require.True(t, c.Notification())

	c.ScrollToBottom(v.scroller(), scroll.Smooth)

	assert.False(t, c.Notification())
	assert.False(t, c.Pending())
	assert.Equal(t, []scroll.Mode{scroll.Smooth}, v.scrolls)
}

func TestAction_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "notify", scroll.ActionNotify.String())
	assert.Equal(t, "preserve-anchor", scroll.ActionPreserveAnchor.String())
	assert.Equal(t, "jump-to-bottom", scroll.ActionJumpToBottom.String())
}
