package bubbletea

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/fwojciec/kai/scroll"
)

const fps = 60

var _ scroll.Scroller = (*viewportScroller)(nil)

// viewportScroller drives a viewport for the scroll controller. Smooth
// scrolls are animated with a critically damped spring that follows the
// bottom while content keeps growing.
type viewportScroller struct {
	vp *viewport.Model
	d  *dispatcher

	spring   harmonica.Spring
	pos, vel float64
	active   bool
	gen      int
}

func newViewportScroller(vp *viewport.Model, d *dispatcher) *viewportScroller {
	return &viewportScroller{
		vp:     vp,
		d:      d,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 1.0),
	}
}

func (s *viewportScroller) Metrics() scroll.Metrics {
	return scroll.Metrics{
		Top:          s.vp.YOffset,
		Height:       s.vp.TotalLineCount(),
		ClientHeight: s.vp.Height,
	}
}

func (s *viewportScroller) SetTop(top int) {
	s.stop()
	s.vp.SetYOffset(top)
}

func (s *viewportScroller) ScrollToBottom(mode scroll.Mode) {
	if mode == scroll.Instant {
		s.stop()
		s.vp.GotoBottom()
		return
	}
	if s.active {
		return
	}
	s.active = true
	s.pos, s.vel = float64(s.vp.YOffset), 0
	s.d.push(s.frame())
}

// Animating reports whether a smooth scroll is in progress.
func (s *viewportScroller) Animating() bool { return s.active }

// stop cancels a running animation. Frames already scheduled are dropped.
func (s *viewportScroller) stop() {
	if s.active {
		s.active = false
		s.gen++
	}
}

// step advances the animation by one frame. It reports whether another
// frame is needed.
func (s *viewportScroller) step(gen int) bool {
	if !s.active || gen != s.gen {
		return false
	}
	target := float64(max(0, s.vp.TotalLineCount()-s.vp.Height))
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	if math.Abs(target-s.pos) < 0.5 && math.Abs(s.vel) < 0.5 {
		s.vp.GotoBottom()
		s.active = false
		return false
	}
	s.vp.SetYOffset(int(math.Round(s.pos)))
	return true
}

func (s *viewportScroller) frame() tea.Cmd {
	gen := s.gen
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// frameMsg advances a smooth scroll animation.
type frameMsg struct {
	gen int
}
