// Package mock provides test doubles for kai interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/kai"
)

// Interface compliance checks.
var (
	_ kai.Host    = (*Host)(nil)
	_ kai.Metrics = (*Metrics)(nil)
)

// Host is a test double for kai.Host.
// Set HandleFn before calling Handle.
type Host struct {
	HandleFn func(ctx context.Context, e kai.Event) ([]kai.Update, error)
}

// Handle delegates to HandleFn.
func (h *Host) Handle(ctx context.Context, e kai.Event) ([]kai.Update, error) {
	return h.HandleFn(ctx, e)
}

// Metrics is a test double for kai.Metrics.
// Unset function fields are no-ops.
type Metrics struct {
	ChannelPublishedFn    func(channel string)
	ChannelCoalescedFn    func(channel string)
	PaginationRequestedFn func(target kai.Target, dir kai.Direction)
	PaginationIgnoredFn   func(target kai.Target, dir kai.Direction)
	PaginationTimedOutFn  func(target kai.Target, dir kai.Direction)
}

// ChannelPublished delegates to ChannelPublishedFn.
func (m *Metrics) ChannelPublished(channel string) {
	if m.ChannelPublishedFn != nil {
		m.ChannelPublishedFn(channel)
	}
}

// ChannelCoalesced delegates to ChannelCoalescedFn.
func (m *Metrics) ChannelCoalesced(channel string) {
	if m.ChannelCoalescedFn != nil {
		m.ChannelCoalescedFn(channel)
	}
}

// PaginationRequested delegates to PaginationRequestedFn.
func (m *Metrics) PaginationRequested(target kai.Target, dir kai.Direction) {
	if m.PaginationRequestedFn != nil {
		m.PaginationRequestedFn(target, dir)
	}
}

// PaginationIgnored delegates to PaginationIgnoredFn.
func (m *Metrics) PaginationIgnored(target kai.Target, dir kai.Direction) {
	if m.PaginationIgnoredFn != nil {
		m.PaginationIgnoredFn(target, dir)
	}
}

// PaginationTimedOut delegates to PaginationTimedOutFn.
func (m *Metrics) PaginationTimedOut(target kai.Target, dir kai.Direction) {
	if m.PaginationTimedOutFn != nil {
		m.PaginationTimedOutFn(target, dir)
	}
}
