package bubbletea_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/kai"
	bt "github.com/fwojciec/kai/bubbletea"
	"github.com/fwojciec/kai/mock"
	"github.com/stretchr/testify/require"
)

// recorder is a host that records every event and answers with the
// updates returned by respond.
type recorder struct {
	mu      sync.Mutex
	events  []kai.Event
	respond func(e kai.Event) ([]kai.Update, error)
}

func (r *recorder) host() *mock.Host {
	return &mock.Host{HandleFn: func(_ context.Context, e kai.Event) ([]kai.Update, error) {
		r.mu.Lock()
		r.events = append(r.events, e)
		respond := r.respond
		r.mu.Unlock()
		if respond == nil {
			return nil, nil
		}
		return respond(e)
	}}
}

// Events returns a copy of the recorded events.
func (r *recorder) Events() []kai.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kai.Event(nil), r.events...)
}

// count returns how many recorded events satisfy match.
func (r *recorder) count(match func(kai.Event) bool) int {
	n := 0
	for _, e := range r.Events() {
		if match(e) {
			n++
		}
	}
	return n
}

// initModel creates a model over rec and sends a WindowSizeMsg to lay it out.
func initModel(t *testing.T, rec *recorder, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, rec, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, rec *recorder, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	opts = append([]bt.Option{bt.WithGateTimeout(0), bt.WithoutMouse()}, opts...)
	m := bt.New(rec.host(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// step sends a message, runs the resulting commands and feeds what they
// produce back into the model until nothing is left. Host results, timers
// and animation frames all settle before step returns.
func step(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	for _, out := range execCmd(cmd) {
		model = step(t, model, out)
	}
	return model
}

// apply pushes host updates into the model.
func apply(t *testing.T, m bt.Model, updates ...kai.Update) bt.Model {
	t.Helper()
	for _, u := range updates {
		m = step(t, m, bt.UpdateMsg{Update: u})
	}
	return m
}

// execCmd runs cmd and returns the messages it produced, flattening
// batches. Commands that block longer than a short timeout, such as
// cursor blinks and animation frames, are dropped.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, execCmd(c)...)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText types s into the focused pane.
func typeText(t *testing.T, m bt.Model, s string) bt.Model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// messages builds n messages of room from alternating senders, with ids
// starting at first.
func messages(room string, first, n int) []kai.Item {
	items := make([]kai.Item, 0, n)
	for i := first; i < first+n; i++ {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		items = append(items, kai.Message{
			ID:         room + "-" + strconv.Itoa(i),
			RoomID:     room,
			SenderID:   sender,
			SenderName: sender,
			Content:    "message number " + strconv.Itoa(i),
		})
	}
	return items
}

func rooms(ids ...string) []kai.Room {
	out := make([]kai.Room, len(ids))
	for i, id := range ids {
		out[i] = kai.Room{ID: id, Title: "Room " + id, Subtitle: "last message"}
	}
	return out
}
