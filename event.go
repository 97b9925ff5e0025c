package kai

// Event is a sealed interface representing a one-way notification from the
// widget to its host. Name returns the event's contract name.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
	Name() string
}

// Target names the list a pagination event belongs to.
type Target string

const (
	TargetMessages Target = "messages"
	TargetRooms    Target = "rooms"
)

// EventLoadMore asks the host for older (Top) or newer (Bottom) messages.
type EventLoadMore struct {
	Direction Direction
}

func (EventLoadMore) event() {}

// Name returns "load-more-top" or "load-more-bottom".
func (e EventLoadMore) Name() string { return "load-more-" + e.Direction.String() }

// EventLoadMoreRooms asks the host for the next page of rooms.
type EventLoadMoreRooms struct{}

func (EventLoadMoreRooms) event()       {}
func (EventLoadMoreRooms) Name() string { return "load-more-rooms" }

// EventPaginationTimeout reports that a load-more request was not answered
// in time. The gate has been reopened; the host may retry.
type EventPaginationTimeout struct {
	Target    Target
	Direction Direction
}

func (EventPaginationTimeout) event()       {}
func (EventPaginationTimeout) Name() string { return "pagination-timeout" }

// EventSelectRoom reports a room chosen in the sidebar.
type EventSelectRoom struct {
	Room Room
}

func (EventSelectRoom) event()       {}
func (EventSelectRoom) Name() string { return "select-room" }

// EventAddRoom reports the add-room button in the sidebar header.
type EventAddRoom struct{}

func (EventAddRoom) event()       {}
func (EventAddRoom) Name() string { return "add-room" }

// EventSearchRoom reports a change of the room search input.
type EventSearchRoom struct {
	Value string
}

func (EventSearchRoom) event()       {}
func (EventSearchRoom) Name() string { return "search-room" }

// EventSendMessage reports a message submitted from the footer.
type EventSendMessage struct {
	RoomID   string
	SenderID string
	Content  string
	ReplyTo  *Reply
}

func (EventSendMessage) event()       {}
func (EventSendMessage) Name() string { return "send-message" }

// EventSelectFile reports a file picked for attachment.
type EventSelectFile struct {
	Path string
}

func (EventSelectFile) event()       {}
func (EventSelectFile) Name() string { return "select-file" }

// EventRemoveAttachment reports a pending attachment removed from the footer.
type EventRemoveAttachment struct {
	Attachment Attachment
}

func (EventRemoveAttachment) event()       {}
func (EventRemoveAttachment) Name() string { return "remove-attachment" }

// EventDownloadAttachment reports a request to download a message attachment.
type EventDownloadAttachment struct {
	Attachment Attachment
}

func (EventDownloadAttachment) event()       {}
func (EventDownloadAttachment) Name() string { return "download-attachment" }

// EventSelectEmoji reports an emoji reaction added to a message.
type EventSelectEmoji struct {
	MessageID     string
	CurrentUserID string
	Emoji         string
}

func (EventSelectEmoji) event()       {}
func (EventSelectEmoji) Name() string { return "select-emoji" }

// EventReplyToMessage reports that the user started replying to a message.
type EventReplyToMessage struct {
	ReplyTo Reply
}

func (EventReplyToMessage) event()       {}
func (EventReplyToMessage) Name() string { return "reply-to-message" }

// EventCancelReply reports that the pending reply was dismissed.
type EventCancelReply struct{}

func (EventCancelReply) event()       {}
func (EventCancelReply) Name() string { return "cancel-reply" }

// EventClickReaction reports a click on an existing reaction chip.
type EventClickReaction struct {
	MessageID string
	Emoji     string
	Users     []string
}

func (EventClickReaction) event()       {}
func (EventClickReaction) Name() string { return "click-reaction" }

// EventSelectAction reports a room or message action picked from a menu.
// MessageID is empty for room actions.
type EventSelectAction struct {
	Type      ActionType
	Action    Action
	RoomID    string
	MessageID string
}

func (EventSelectAction) event()       {}
func (EventSelectAction) Name() string { return "select-action" }

// EventSelectSuggestion reports a suggestion picked below the message list.
type EventSelectSuggestion struct {
	Suggestion Suggestion
}

func (EventSelectSuggestion) event()       {}
func (EventSelectSuggestion) Name() string { return "select-suggestion" }

// EventToggleSidebar reports the sidebar being opened or closed.
type EventToggleSidebar struct {
	Visible bool
}

func (EventToggleSidebar) event()       {}
func (EventToggleSidebar) Name() string { return "toggle-sidebar" }

// EventClickDialogButton reports a dialog button press.
type EventClickDialogButton struct {
	Event string
	Side  Side
}

func (EventClickDialogButton) event()       {}
func (EventClickDialogButton) Name() string { return "click-dialog-button" }

// Interface compliance checks.
var (
	_ Event = EventLoadMore{}
	_ Event = EventLoadMoreRooms{}
	_ Event = EventPaginationTimeout{}
	_ Event = EventSelectRoom{}
	_ Event = EventAddRoom{}
	_ Event = EventSearchRoom{}
	_ Event = EventSendMessage{}
	_ Event = EventSelectFile{}
	_ Event = EventRemoveAttachment{}
	_ Event = EventDownloadAttachment{}
	_ Event = EventSelectEmoji{}
	_ Event = EventReplyToMessage{}
	_ Event = EventCancelReply{}
	_ Event = EventClickReaction{}
	_ Event = EventSelectAction{}
	_ Event = EventSelectSuggestion{}
	_ Event = EventToggleSidebar{}
	_ Event = EventClickDialogButton{}
)
