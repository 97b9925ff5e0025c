// Package bubbletea provides the Bubble Tea terminal rendition of the kai
// chat widget.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/kai"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Updates received on updates are applied in order; a nil channel is
// allowed. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model, updates <-chan kai.Update) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Quit()
				return
			case u, ok := <-updates:
				if !ok {
					updates = nil
					continue
				}
				p.Send(UpdateMsg{Update: u})
			}
		}
	}()
	_, err := p.Run()
	return err
}

// UpdateMsg delivers one host update to the model.
type UpdateMsg struct {
	Update kai.Update
}

// HostResultMsg carries the outcome of one kai.Host.Handle call.
type HostResultMsg struct {
	Event   kai.Event
	Updates []kai.Update
	Err     error
}
