package mock

import "github.com/fwojciec/kai/scroll"

// Interface compliance checks.
var (
	_ scroll.Scroller = (*Scroller)(nil)
	_ scroll.Sentinel = (*Sentinel)(nil)
)

// Scroller is a test double for scroll.Scroller.
// Set the function fields for the methods you need.
type Scroller struct {
	MetricsFn        func() scroll.Metrics
	SetTopFn         func(top int)
	ScrollToBottomFn func(mode scroll.Mode)
}

// Metrics delegates to MetricsFn.
func (s *Scroller) Metrics() scroll.Metrics {
	return s.MetricsFn()
}

// SetTop delegates to SetTopFn.
func (s *Scroller) SetTop(top int) {
	s.SetTopFn(top)
}

// ScrollToBottom delegates to ScrollToBottomFn.
func (s *Scroller) ScrollToBottom(mode scroll.Mode) {
	s.ScrollToBottomFn(mode)
}

// Sentinel is a test double for scroll.Sentinel.
// Set ObserveFn and DisposeFn before use.
type Sentinel struct {
	ObserveFn func(fn func(visible bool))
	DisposeFn func()
}

// Observe delegates to ObserveFn.
func (s *Sentinel) Observe(fn func(visible bool)) {
	s.ObserveFn(fn)
}

// Dispose delegates to DisposeFn.
func (s *Sentinel) Dispose() {
	s.DisposeFn()
}
