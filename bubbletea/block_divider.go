package bubbletea

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
)

var (
	_ Block = (*DividerBlock)(nil)
	_ Block = (*TypingBlock)(nil)
	_ Block = (*SuggestionBlock)(nil)
)

// DividerBlock renders a centered label on a horizontal rule.
type DividerBlock struct {
	divider kai.Divider
	styles  Styles
}

// NewDividerBlock creates a DividerBlock.
func NewDividerBlock(d kai.Divider, styles Styles) *DividerBlock {
	return &DividerBlock{divider: d, styles: styles}
}

func (b *DividerBlock) View(width int) string {
	label := b.divider.Label
	if label != "" {
		label = " " + label + " "
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		b.styles.Divider.Render(label),
		lipgloss.WithWhitespaceChars("─"),
		lipgloss.WithWhitespaceForeground(b.styles.Divider.GetForeground()),
	)
}

// TypingBlock renders the typing indicator.
type TypingBlock struct {
	label  string
	styles Styles
}

// NewTypingBlock creates a TypingBlock.
func NewTypingBlock(label string, styles Styles) *TypingBlock {
	return &TypingBlock{label: label, styles: styles}
}

func (b *TypingBlock) View(width int) string {
	return b.styles.Muted.Width(width).Render("  ••• " + b.label)
}

// SuggestionBlock renders numbered, clickable suggestion chips.
type SuggestionBlock struct {
	suggestions []kai.Suggestion
	rc          *renderContext
}

// NewSuggestionBlock creates a SuggestionBlock.
func NewSuggestionBlock(suggestions []kai.Suggestion, rc *renderContext) *SuggestionBlock {
	return &SuggestionBlock{suggestions: suggestions, rc: rc}
}

func (b *SuggestionBlock) View(width int) string {
	chips := make([]string, 0, len(b.suggestions))
	for i, sg := range b.suggestions {
		text := sg.Text
		if i < 9 {
			text = b.rc.styles.Muted.Render(strconv.Itoa(i+1)) + " " + text
		}
		chips = append(chips, b.rc.mark(suggestionZone(i), b.rc.styles.Accent.Render("[")+text+b.rc.styles.Accent.Render("]")))
	}
	style := lipgloss.NewStyle().Width(max(1, width-2))
	if !b.rc.features.AlignMineLeft {
		style = style.Align(lipgloss.Right)
	}
	return prefixLines(style.Render(strings.Join(chips, " ")), "  ")
}

func suggestionZone(i int) string {
	return "suggestion:" + strconv.Itoa(i)
}
