package scroll

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/kai"
	"golang.org/x/time/rate"
)

// DefaultTimeout is how long a load-more request may stay unanswered
// before the gate reopens.
const DefaultTimeout = 15 * time.Second

// Ticket identifies one armed load-more request. Pass it back to
// Gate.Expire once Timeout has elapsed.
type Ticket struct {
	Direction kai.Direction
	Seq       uint64
	Timeout   time.Duration
}

// Gate turns sentinel visibility edges into at most one outstanding
// load-more request per direction.
type Gate struct {
	target  kai.Target
	emit    func(kai.Event)
	timeout time.Duration
	logger  *slog.Logger
	metrics kai.Metrics
	ignored rate.Sometimes

	mu       sync.Mutex
	loading  bool
	inFlight [2]bool
	seq      [2]uint64
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTimeout sets how long a request may stay in flight. Zero disables
// the timeout.
func WithTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		g.timeout = d
	}
}

// WithGateLogger sets the logger.
func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = l
	}
}

// WithGateMetrics sets the metrics sink.
func WithGateMetrics(m kai.Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// NewGate creates a gate for target. emit receives the load-more and
// timeout events; it is called without the gate's lock held.
func NewGate(target kai.Target, emit func(kai.Event), opts ...GateOption) *Gate {
	g := &Gate{
		target:  target,
		emit:    emit,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
		metrics: kai.NopMetrics{},
		ignored: rate.Sometimes{First: 3, Interval: time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetLoading mirrors the first-paint loading state. While loading every
// trigger is ignored, since both sentinels of an empty list are visible.
func (g *Gate) SetLoading(loading bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = loading
}

// InFlight reports whether a request for dir is outstanding.
func (g *Gate) InFlight(dir kai.Direction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[dir]
}

// OnSentinelVisible arms dir and emits a load-more event unless the list is
// loading or a request for dir is already outstanding. It reports whether
// an event was emitted.
func (g *Gate) OnSentinelVisible(dir kai.Direction) (Ticket, bool) {
	g.mu.Lock()
	if g.loading || g.inFlight[dir] {
		loading := g.loading
		g.mu.Unlock()
		g.metrics.PaginationIgnored(g.target, dir)
		g.ignored.Do(func() {
			g.logger.Debug("pagination trigger ignored",
				"target", g.target, "direction", dir, "loading", loading)
		})
		return Ticket{}, false
	}
	g.inFlight[dir] = true
	g.seq[dir]++
	t := Ticket{Direction: dir, Seq: g.seq[dir], Timeout: g.timeout}
	g.mu.Unlock()

	g.metrics.PaginationRequested(g.target, dir)
	g.logger.Debug("pagination requested", "target", g.target, "direction", dir)
	g.emit(g.loadMore(dir))
	return t, true
}

// OnSnapshotReceived clears dir after the host delivered data for it.
func (g *Gate) OnSnapshotReceived(dir kai.Direction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight[dir] = false
}

// Reset clears both directions.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = [2]bool{}
}

// Expire force-clears the request identified by t if it is still the
// outstanding one and emits kai.EventPaginationTimeout. Stale tickets are
// ignored. It reports whether the gate was reopened.
func (g *Gate) Expire(t Ticket) bool {
	g.mu.Lock()
	if !g.inFlight[t.Direction] || g.seq[t.Direction] != t.Seq {
		g.mu.Unlock()
		return false
	}
	g.inFlight[t.Direction] = false
	g.mu.Unlock()

	g.metrics.PaginationTimedOut(g.target, t.Direction)
	g.logger.Warn("pagination request expired",
		"target", g.target, "direction", t.Direction, "timeout", t.Timeout,
		"error", kai.ErrPaginationTimeout)
	g.emit(kai.EventPaginationTimeout{Target: g.target, Direction: t.Direction})
	return true
}

func (g *Gate) loadMore(dir kai.Direction) kai.Event {
	if g.target == kai.TargetRooms {
		return kai.EventLoadMoreRooms{}
	}
	return kai.EventLoadMore{Direction: dir}
}
