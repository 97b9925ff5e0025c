package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	bt "github.com/fwojciec/kai/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(kai.DarkTheme())

	assert.Equal(t, lipgloss.Color("12"), styles.Mine.GetForeground())
	assert.True(t, styles.Mine.GetBold())

	assert.Equal(t, lipgloss.Color("13"), styles.Theirs.GetForeground())

	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())

	assert.Equal(t, lipgloss.Color("9"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("14"), styles.Selected.GetForeground())

	assert.Equal(t, lipgloss.Color("12"), styles.Badge.GetBackground())
	assert.Equal(t, lipgloss.Color("15"), styles.Badge.GetForeground())

	assert.Equal(t, lipgloss.Color("11"), styles.Reaction.GetForeground())
	assert.Equal(t, lipgloss.Color("0"), styles.Dialog.GetBackground())
	assert.Equal(t, lipgloss.Color("10"), styles.Highlight.GetForeground())
	assert.True(t, styles.Deleted.GetItalic())
}

func TestNewStylesLightTheme(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(kai.LightTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.Mine.GetForeground())
	assert.Equal(t, lipgloss.Color("7"), styles.Dialog.GetBackground())
	assert.Equal(t, lipgloss.Color("0"), styles.Dialog.GetForeground())
}

func TestNewStylesNegativeIndexYieldsNoColor(t *testing.T) {
	t.Parallel()

	theme := kai.Theme{Mine: -1}
	styles := bt.NewStyles(theme)

	assert.Equal(t, lipgloss.NoColor{}, styles.Mine.GetForeground())
}
