package kai

// Item is a sealed interface representing one row of the message feed.
// The unexported marker method prevents external implementations.
// ItemID and ItemRoomID give the reconciler identity without a type switch.
type Item interface {
	isItem()
	ItemID() string
	ItemRoomID() string
}

// Message is a chat message sent by a user.
type Message struct {
	ID          string
	RoomID      string
	SenderID    string
	SenderName  string
	Timestamp   string // opaque, sortable
	Content     string
	Attachments []Attachment
	Reactions   map[string][]string // emoji -> user ids
	IsDeleted   bool
	ReplyTo     *Reply
}

func (Message) isItem() {}

// ItemID returns the message id.
func (m Message) ItemID() string { return m.ID }

// ItemRoomID returns the id of the room the message belongs to.
func (m Message) ItemRoomID() string { return m.RoomID }

// Divider is a presentational separator between messages, such as a date.
type Divider struct {
	ID     string
	RoomID string
	Label  string
}

func (Divider) isItem() {}

// ItemID returns the divider id.
func (d Divider) ItemID() string { return d.ID }

// ItemRoomID returns the id of the room the divider belongs to.
func (d Divider) ItemRoomID() string { return d.RoomID }

// Attachment is a file attached to a message or pending in the footer.
type Attachment struct {
	ID   string
	Name string
	Meta string
}

// Reply is a value snapshot of the message being replied to. It is copied,
// never shared, so reply chains cannot form cycles.
type Reply struct {
	MessageID  string
	SenderID   string
	SenderName string
	Content    string
}

// ReplyFrom snapshots a message for use as a reply reference.
func ReplyFrom(m Message) Reply {
	return Reply{
		MessageID:  m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
	}
}

// Interface compliance checks.
var (
	_ Item = Message{}
	_ Item = Divider{}
)
