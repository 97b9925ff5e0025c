// Package bus implements typed publish/subscribe channels scoped to a tree
// of component lifetimes. A channel has exactly one writer, obtained from
// Provide; any component in the providing scope or below may Subscribe.
package bus

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/kai"
)

// Bus is one scope of the channel tree. The root is created with New and
// children with Scope. Lookups walk from a scope to the root, so a child may
// shadow a channel provided by an ancestor.
type Bus struct {
	parent  *Bus
	logger  *slog.Logger
	metrics kai.Metrics

	mu       sync.Mutex
	channels map[string]any
	closers  []func()
	closed   bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for channel lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// WithMetrics sets the sink for publish counters.
func WithMetrics(m kai.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// New creates a root scope.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger:   slog.New(slog.DiscardHandler),
		metrics:  kai.NopMetrics{},
		channels: make(map[string]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scope creates a child scope that inherits the logger and metrics. Closing
// b closes the child as well.
func (b *Bus) Scope() *Bus {
	child := &Bus{
		parent:   b,
		logger:   b.logger,
		metrics:  b.metrics,
		channels: make(map[string]any),
	}
	if !b.track(child.Close) {
		panic(fmt.Errorf("scope: %w", kai.ErrChannelClosed))
	}
	return child
}

// Close unsubscribes every subscription made through b, closes the channels
// b provides and closes its child scopes, newest first. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()

	for _, c := range slices.Backward(closers) {
		c()
	}
}

// track registers fn to run on Close. It reports false if b is closed.
func (b *Bus) track(fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.closers = append(b.closers, fn)
	return true
}

func (b *Bus) lookup(name string) (any, bool) {
	for s := b; s != nil; s = s.parent {
		s.mu.Lock()
		e, ok := s.channels[name]
		s.mu.Unlock()
		if ok {
			return e, true
		}
	}
	return nil, false
}

func (b *Bus) unregister(name string, e any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channels[name] == e {
		delete(b.channels, name)
	}
}

// Provide registers the channel identified by key in scope b with an initial
// value and returns its only writer. Providing a name twice in the same
// scope panics with kai.ErrChannelOwned.
func Provide[T any](b *Bus, key Key[T], initial T) *Writer[T] {
	c := &channel[T]{
		name:    key.name,
		equal:   key.equal,
		metrics: b.metrics,
		value:   initial,
	}
	w := &Writer[T]{c: c, bus: b}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		panic(fmt.Errorf("provide %q: %w", key.name, kai.ErrChannelClosed))
	}
	if _, dup := b.channels[key.name]; dup {
		b.mu.Unlock()
		panic(fmt.Errorf("provide %q: %w", key.name, kai.ErrChannelOwned))
	}
	b.channels[key.name] = c
	b.closers = append(b.closers, w.Close)
	b.mu.Unlock()

	b.logger.Debug("channel provided", "channel", key.name)
	return w
}

// Subscribe attaches fn to the nearest channel named by key. fn is called
// once synchronously with (current, current) and then with (next, prev) for
// every later publish of a different value, in publish order. The returned
// function detaches fn and may be called any number of times; Close on b
// calls it too.
//
// Subscribe panics with kai.ErrUnknownChannel when no enclosing scope
// provides the name and with kai.ErrChannelType when the provider's value
// type differs from T.
func Subscribe[T any](b *Bus, key Key[T], fn func(next, prev T)) func() {
	e, ok := b.lookup(key.name)
	if !ok {
		panic(fmt.Errorf("subscribe %q: %w", key.name, kai.ErrUnknownChannel))
	}
	c, ok := e.(*channel[T])
	if !ok {
		panic(fmt.Errorf("subscribe %q as %T: %w", key.name, *new(T), kai.ErrChannelType))
	}
	cur, unsubscribe := c.subscribe(fn)
	if !b.track(unsubscribe) {
		unsubscribe()
		panic(fmt.Errorf("subscribe %q: %w", key.name, kai.ErrChannelClosed))
	}
	fn(cur, cur)
	return unsubscribe
}

// Writer publishes values on one channel.
type Writer[T any] struct {
	c   *channel[T]
	bus *Bus
}

// Name returns the channel name.
func (w *Writer[T]) Name() string { return w.c.name }

// Value returns the last published value.
func (w *Writer[T]) Value() T {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	return w.c.value
}

// Publish stores v and notifies subscribers when it differs from the
// current value. Publishing from inside a subscriber callback is allowed:
// the change is queued and delivered after the current one, so every
// subscriber observes changes in publish order. Publishing on a closed
// writer panics with kai.ErrChannelClosed.
func (w *Writer[T]) Publish(v T) {
	w.c.publish(v)
}

// Update publishes fn applied to the current value.
func (w *Writer[T]) Update(fn func(T) T) {
	w.c.publish(fn(w.Value()))
}

// Close destroys the channel: subscribers are dropped and the name is
// released in its scope. Close is idempotent.
func (w *Writer[T]) Close() {
	if w.c.close() {
		w.bus.unregister(w.c.name, w.c)
		w.bus.logger.Debug("channel closed", "channel", w.c.name)
	}
}

type change[T any] struct {
	next, prev T
	seq        uint64
}

type subscriber[T any] struct {
	fn     func(next, prev T)
	since  uint64
	active atomic.Bool
}

type channel[T any] struct {
	name    string
	equal   func(a, b T) bool
	metrics kai.Metrics

	mu          sync.Mutex
	value       T
	seq         uint64
	subs        []*subscriber[T]
	queue       []change[T]
	dispatching bool
	closed      bool
}

func (c *channel[T]) subscribe(fn func(next, prev T)) (T, func()) {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)

	c.mu.Lock()
	s.since = c.seq
	cur := c.value
	if !c.closed {
		c.subs = append(c.subs, s)
	}
	c.mu.Unlock()

	var once sync.Once
	return cur, func() {
		once.Do(func() {
			s.active.Store(false)
			c.mu.Lock()
			c.subs = slices.DeleteFunc(c.subs, func(x *subscriber[T]) bool { return x == s })
			c.mu.Unlock()
		})
	}
}

func (c *channel[T]) publish(v T) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic(fmt.Errorf("publish %q: %w", c.name, kai.ErrChannelClosed))
	}
	prev := c.value
	if c.equal(prev, v) {
		c.mu.Unlock()
		c.metrics.ChannelCoalesced(c.name)
		return
	}
	c.value = v
	c.seq++
	c.queue = append(c.queue, change[T]{next: v, prev: prev, seq: c.seq})
	c.metrics.ChannelPublished(c.name)
	if c.dispatching {
		// The goroutine already dispatching delivers this change.
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	c.mu.Unlock()
	c.drain()
}

// drain delivers queued changes until the queue is empty. A panicking
// subscriber drops the rest of the queue and releases the dispatcher role.
func (c *channel[T]) drain() {
	done := false
	defer func() {
		if !done {
			c.mu.Lock()
			c.dispatching = false
			c.queue = nil
			c.mu.Unlock()
		}
	}()

	c.mu.Lock()
	for len(c.queue) > 0 {
		ch := c.queue[0]
		c.queue = c.queue[1:]
		subs := slices.Clone(c.subs)
		c.mu.Unlock()
		for _, s := range subs {
			if s.active.Load() && ch.seq > s.since {
				s.fn(ch.next, ch.prev)
			}
		}
		c.mu.Lock()
	}
	c.dispatching = false
	c.mu.Unlock()
	done = true
}

func (c *channel[T]) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	for _, s := range c.subs {
		s.active.Store(false)
	}
	c.subs = nil
	c.queue = nil
	return true
}
