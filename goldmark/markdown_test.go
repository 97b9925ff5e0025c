package goldmark_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func stripANSI(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	return re.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI color output so styled elements produce escape codes.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := kai.DarkTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("see you at 5", 80, theme)
		assert.Equal(t, "see you at 5", strings.TrimRight(stripANSI(result), " "))
	})

	t.Run("heading is styled", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("# Agenda", 80, theme)
		paragraph := goldmark.Render("Agenda", 80, theme)
		assert.Contains(t, stripANSI(heading), "Agenda")
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("emphasis", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("**bold** and *italic*", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "bold")
		assert.Contains(t, stripped, "italic")
		assert.NotContains(t, stripped, "*")
	})

	t.Run("strikethrough", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("~~cancelled~~", 80, theme)
		assert.Contains(t, stripANSI(result), "cancelled")
		assert.NotContains(t, stripANSI(result), "~")
	})

	t.Run("bare URL is linkified", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("docs at https://example.com/x", 80, theme)
		assert.Contains(t, stripANSI(result), "https://example.com/x")
		assert.NotEqual(t, "docs at https://example.com/x", strings.TrimSpace(result))
	})

	t.Run("link shows text and URL", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("[the doc](https://example.com)", 80, theme))
		assert.Contains(t, result, "the doc")
		assert.Contains(t, result, "(https://example.com)")
	})

	t.Run("fenced code keeps lines", func(t *testing.T) {
		t.Parallel()
		src := "```go\nfmt.Println(\"hello world\")\n```"
		result := stripANSI(goldmark.Render(src, 20, theme))
		assert.Contains(t, result, "go")
		assert.Contains(t, result, `│ fmt.Println("hello world")`)
	})

	t.Run("blockquote gets a bar", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("> quoted reply\n\nanswer", 80, theme))
		lines := strings.Split(result, "\n")
		assert.True(t, strings.HasPrefix(lines[0], "▎ quoted reply"), lines[0])
		assert.Contains(t, result, "answer")
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("- one\n- two\n\n3. three\n4. four", 80, theme))
		assert.Contains(t, result, "• one")
		assert.Contains(t, result, "• two")
		assert.Contains(t, result, "3. three")
		assert.Contains(t, result, "4. four")
	})

	t.Run("task list", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("- [x] done\n- [ ] todo", 80, theme))
		assert.Contains(t, result, "[x] done")
		assert.Contains(t, result, "[ ] todo")
	})

	t.Run("list continuation lines are indented", func(t *testing.T) {
		t.Parallel()
		src := "- this is a very long list item that should wrap and have continuation lines properly indented"
		lines := strings.Split(stripANSI(goldmark.Render(src, 30, theme)), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "• "))
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				assert.True(t, strings.HasPrefix(line, "  "), "continuation line should be indented: %q", line)
			}
		}
	})

	t.Run("table columns align", func(t *testing.T) {
		t.Parallel()
		src := "| name | qty |\n|---|---|\n| apples | 3 |\n| kiwi | 12 |"
		lines := strings.Split(stripANSI(goldmark.Render(src, 80, theme)), "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, strings.Index(lines[1], "│"), strings.Index(lines[2], "│"))
		assert.Contains(t, lines[1], "apples")
	})

	t.Run("image renders alt text", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("![cat photo](https://example.com/cat.png)", 80, theme))
		assert.Contains(t, result, "[image: cat photo]")
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		long := "word1 word2 word3 word4 word5 word6 word7 word8 word9 word10 word11 word12"
		result := goldmark.Render(long, 30, theme)
		assert.Contains(t, stripANSI(result), "word12")
		assert.Greater(t, len(strings.Split(result, "\n")), 1)
	})

	t.Run("width zero defaults to 80", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, stripANSI(goldmark.Render("hello world", 0, theme)), "hello world")
	})
}

func TestRenderer_Reuse(t *testing.T) {
	t.Parallel()

	r := goldmark.New(kai.LightTheme())
	first := r.Render("*one*", 40)
	second := r.Render("*one*", 40)
	assert.Equal(t, first, second)
	assert.Contains(t, stripANSI(r.Render("two", 40)), "two")
}
