package bubbletea

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/scroll"
)

// dispatcher collects the commands produced while the model handles one
// message. Components emit events and schedule timers through it from
// inside bus callbacks; the root drains it at the end of Update.
type dispatcher struct {
	ctx    context.Context
	host   kai.Host
	logger *slog.Logger
	cmds   []tea.Cmd
}

// emit schedules e for delivery to the host off the UI goroutine.
func (d *dispatcher) emit(e kai.Event) {
	d.logger.Debug("event emitted", "event", e.Name())
	ctx, host := d.ctx, d.host
	d.cmds = append(d.cmds, func() tea.Msg {
		updates, err := host.Handle(ctx, e)
		return HostResultMsg{Event: e, Updates: updates, Err: err}
	})
}

func (d *dispatcher) push(cmd tea.Cmd) {
	if cmd != nil {
		d.cmds = append(d.cmds, cmd)
	}
}

// expire schedules the timeout of a pagination ticket.
func (d *dispatcher) expire(target kai.Target, t scroll.Ticket) {
	if t.Timeout <= 0 {
		return
	}
	d.push(tea.Tick(t.Timeout, func(time.Time) tea.Msg {
		return expireMsg{target: target, ticket: t}
	}))
}

func (d *dispatcher) flush() tea.Cmd {
	cmds := d.cmds
	d.cmds = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// expireMsg fires when a pagination ticket's timeout has elapsed.
type expireMsg struct {
	target kai.Target
	ticket scroll.Ticket
}
