package scroll

import "sync"

// Sentinel reports visibility transitions of a boundary marker.
type Sentinel interface {
	// Observe registers fn to receive visibility changes. If the state is
	// already known fn is called with it immediately.
	Observe(fn func(visible bool))
	// Dispose stops reporting. It is idempotent.
	Dispose()
}

// Edge is the boundary a sentinel marks.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// DefaultMargin is how many rows outside the visible edge a sentinel
// already counts as visible, so pagination starts slightly before the
// viewer reaches the real edge.
const DefaultMargin = 2

// LineSentinel derives edge visibility from row metrics.
type LineSentinel struct {
	edge   Edge
	margin int

	mu       sync.Mutex
	fn       func(bool)
	known    bool
	visible  bool
	disposed bool
}

// SentinelOption configures a LineSentinel.
type SentinelOption func(*LineSentinel)

// WithMargin sets the visibility margin in rows.
func WithMargin(rows int) SentinelOption {
	return func(s *LineSentinel) {
		s.margin = max(0, rows)
	}
}

// NewLineSentinel creates a sentinel for edge.
func NewLineSentinel(edge Edge, opts ...SentinelOption) *LineSentinel {
	s := &LineSentinel{edge: edge, margin: DefaultMargin}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe implements Sentinel.
func (s *LineSentinel) Observe(fn func(visible bool)) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.fn = fn
	known, visible := s.known, s.visible
	s.mu.Unlock()
	if known {
		fn(visible)
	}
}

// Dispose implements Sentinel.
func (s *LineSentinel) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.fn = nil
}

// Visible reports the last computed visibility.
func (s *LineSentinel) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Update recomputes visibility from m and reports a transition to the
// observer. The first update always reports.
func (s *LineSentinel) Update(m Metrics) {
	visible := s.compute(m)

	s.mu.Lock()
	if s.disposed || (s.known && s.visible == visible) {
		s.mu.Unlock()
		return
	}
	s.known = true
	s.visible = visible
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		fn(visible)
	}
}

func (s *LineSentinel) compute(m Metrics) bool {
	switch s.edge {
	case EdgeTop:
		return m.Top <= s.margin
	default:
		return m.Top+m.ClientHeight >= m.Height-s.margin
	}
}

var _ Sentinel = (*LineSentinel)(nil)
