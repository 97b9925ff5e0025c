package bubbletea

import (
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/scroll"
)

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr Block) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports the message list content for testing.
func RenderContent(m Model) string {
	return m.messages.content()
}

// ScrollMetrics returns the message viewport geometry.
func ScrollMetrics(m Model) scroll.Metrics {
	return m.messages.scroller.Metrics()
}

// SetScrollTop scrolls the message viewport as the viewer would.
func SetScrollTop(m Model, top int) {
	m.messages.scroller.SetTop(top)
	m.messages.observe()
}

// Animating reports whether a smooth scroll is running.
func Animating(m Model) bool {
	return m.messages.scroller.Animating()
}

// FinishAnimation runs a smooth scroll to completion without timers.
func FinishAnimation(m Model) {
	s := m.messages.scroller
	for i := 0; i < 10*fps; i++ {
		if !s.step(s.gen) {
			break
		}
	}
	m.messages.observe()
}

// Notification reports whether the new message badge is raised.
func Notification(m Model) bool { return m.messages.Notification() }

// ShowScrollButton reports whether the scroll-to-bottom button is shown.
func ShowScrollButton(m Model) bool { return m.messages.ShowScrollButton() }

// SelectedMessage returns the id of the keyboard-selected message.
func SelectedMessage(m Model) string { return m.messages.Selected() }

// RoomCursor returns the index of the room under the sidebar cursor.
func RoomCursor(m Model) int { return m.sidebar.cursor }

// DialogSide returns the highlighted dialog button.
func DialogSide(m Model) string { return string(m.dialog.Side()) }

// FooterValue returns the text being composed.
func FooterValue(m Model) string { return m.footer.Value() }

// NewRenderContext builds a render context without markdown or zones.
func NewRenderContext(currentUserID string, features kai.Features) *renderContext {
	return &renderContext{
		styles:        NewStyles(kai.DarkTheme()),
		i18n:          kai.DefaultI18n(),
		features:      features,
		currentUserID: currentUserID,
	}
}
