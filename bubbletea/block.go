package bubbletea

import (
	"strings"

	"github.com/fwojciec/kai"
	zone "github.com/lrstanley/bubblezone"
)

// Block is a renderable row of the message list.
// View takes a width parameter so the list controls layout and blocks are
// testable in isolation.
type Block interface {
	View(width int) string
}

// renderContext is the shared, read-only input of every block in one
// render pass.
type renderContext struct {
	styles        Styles
	i18n          kai.I18n
	features      kai.Features
	currentUserID string
	markdown      func(source string, width int) string
	zones         *zone.Manager
}

// mark wraps v in a click zone. Without a zone manager v is returned as is.
func (rc *renderContext) mark(id, v string) string {
	if rc.zones == nil {
		return v
	}
	return rc.zones.Mark(id, v)
}

// blockSeparator returns the newlines placed between two adjacent blocks.
// Consecutive messages of one sender are grouped without a blank line.
func blockSeparator(prev, curr Block) string {
	p, ok1 := prev.(*MessageBlock)
	c, ok2 := curr.(*MessageBlock)
	if ok1 && ok2 && p.msg.SenderID == c.msg.SenderID {
		return "\n"
	}
	return "\n\n"
}

// prefixLines prepends prefix to every line of s.
func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
