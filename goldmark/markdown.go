// Package goldmark renders chat message markdown to ANSI-styled terminal
// output using goldmark for parsing and lipgloss for styling.
package goldmark

import (
	"github.com/fwojciec/kai"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// are rendered without reflow.
func Render(source string, width int, theme kai.Theme) string {
	return New(theme).Render(source, width)
}

// Renderer renders message markdown with one theme. It is safe for
// concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	styles styles
}

// New creates a Renderer for theme. GitHub flavoured extensions are
// enabled, so bare URLs, strikethrough, task lists and tables render.
func New(theme kai.Theme) *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		styles: newStyles(theme),
	}
}

// Render renders source wrapped to width. A non-positive width defaults to
// 80 columns.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	return r.render([]byte(source), width)
}
