package bubbletea

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/kai"
	"github.com/mattn/go-runewidth"
)

var _ Block = (*MessageBlock)(nil)

// MessageView carries the per-row presentation flags of a message.
type MessageView struct {
	Mine     bool
	Header   bool // first message of a sender group
	Selected bool
	Replying bool // the footer is replying to this message
}

// MessageBlock renders one chat message: sender line, reply quote, body,
// attachments and reaction chips.
type MessageBlock struct {
	msg  kai.Message
	view MessageView
	rc   *renderContext
}

// NewMessageBlock creates a MessageBlock.
func NewMessageBlock(msg kai.Message, view MessageView, rc *renderContext) *MessageBlock {
	return &MessageBlock{msg: msg, view: view, rc: rc}
}

func (b *MessageBlock) View(width int) string {
	s := b.rc.styles
	inner := max(1, width-2)
	bubble := min(inner, max(20, inner*3/4))

	var lines []string
	if b.view.Header {
		lines = append(lines, b.header())
	}
	if r := b.msg.ReplyTo; r != nil && !b.msg.IsDeleted {
		quote := r.SenderName + ": " + firstLine(r.Content)
		lines = append(lines, s.Muted.Render("▎ "+runewidth.Truncate(quote, max(1, bubble-2), "…")))
	}
	lines = append(lines, b.body(bubble))
	if !b.msg.IsDeleted {
		lines = append(lines, b.attachments()...)
		if chips := b.reactions(bubble); chips != "" {
			lines = append(lines, chips)
		}
	}

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if b.view.Mine && !b.rc.features.AlignMineLeft {
		block = lipgloss.PlaceHorizontal(inner, lipgloss.Right, block)
	}

	gutter := "  "
	switch {
	case b.view.Selected:
		gutter = s.Selected.Render("▌") + " "
	case b.view.Replying:
		gutter = s.Highlight.Render("│") + " "
	}
	return prefixLines(block, gutter)
}

func (b *MessageBlock) header() string {
	s := b.rc.styles
	name := b.msg.SenderName
	if name == "" {
		name = b.msg.SenderID
	}
	nameStyle := s.Theirs
	if b.view.Mine {
		nameStyle = s.Mine
	}
	var prefix string
	if !b.view.Mine && b.rc.features.TheirAvatar {
		prefix = avatar(name) + " "
	}
	h := prefix + nameStyle.Render(name)
	if b.msg.Timestamp != "" {
		h += "  " + s.Muted.Render(b.msg.Timestamp)
	}
	return h
}

func (b *MessageBlock) body(width int) string {
	if b.msg.IsDeleted {
		return b.rc.styles.Deleted.Render(b.rc.i18n.DeletedMessage)
	}
	if b.rc.features.Markdown && b.rc.markdown != nil {
		return b.rc.markdown(b.msg.Content, width)
	}
	return lipgloss.NewStyle().Width(width).Render(b.msg.Content)
}

func (b *MessageBlock) attachments() []string {
	var lines []string
	for i, a := range b.msg.Attachments {
		line := "📎 " + a.Name
		if a.Meta != "" {
			line += " " + b.rc.styles.Muted.Render(a.Meta)
		}
		lines = append(lines, b.rc.mark(attachmentZone(b.msg.ID, i), line))
	}
	return lines
}

func (b *MessageBlock) reactions(width int) string {
	if !b.rc.features.Reactions || len(b.msg.Reactions) == 0 {
		return ""
	}
	emojis := make([]string, 0, len(b.msg.Reactions))
	for e, users := range b.msg.Reactions {
		if len(users) > 0 {
			emojis = append(emojis, e)
		}
	}
	slices.Sort(emojis)

	chips := make([]string, 0, len(emojis))
	for _, e := range emojis {
		users := b.msg.Reactions[e]
		style := b.rc.styles.Reaction
		if b.rc.currentUserID != "" && slices.Contains(users, b.rc.currentUserID) {
			style = b.rc.styles.Highlight
		}
		chip := style.Render("[" + e + " " + strconv.Itoa(len(users)) + "]")
		chips = append(chips, b.rc.mark(reactionZone(b.msg.ID, e), chip))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(chips, " "))
}

func attachmentZone(messageID string, i int) string {
	return fmt.Sprintf("attachment:%s:%d", messageID, i)
}

func reactionZone(messageID, emoji string) string {
	return "reaction:" + messageID + ":" + emoji
}

// avatar renders the initial of name in parentheses.
func avatar(name string) string {
	for _, r := range name {
		return "(" + strings.ToUpper(string(r)) + ")"
	}
	return "(?)"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}
