package kai

// RoomState is the value of the "room" channel.
type RoomState struct {
	Rooms          []Room
	SelectedRoomID string
	IsLoading      bool // first page of rooms is loading
	IsLoadingMore  bool
	HasMore        bool
	Actions        []Action
}

// SelectedRoom returns the selected room, if it is in the list.
func (s RoomState) SelectedRoom() (Room, bool) {
	for _, r := range s.Rooms {
		if r.ID == s.SelectedRoomID {
			return r, true
		}
	}
	return Room{}, false
}

// MessageState is the value of the "message" channel. Items are ordered
// oldest to newest and scoped to the selected room.
type MessageState struct {
	Items         []Item
	Suggestions   []Suggestion
	ReplyTo       *Reply
	IsLoading     bool // first page of the room is loading
	IsLoadingMore bool
	HasNewer      bool // newer pages exist below the last item
	IsTyping      bool
	MyActions     []Action
	TheirActions  []Action
}

// FooterState is the value of the "footer" channel.
type FooterState struct {
	Draft       string
	Attachments []Attachment
	EnterToSend bool
}

// Features toggles optional parts of the widget.
type Features struct {
	Emoji         bool // emoji shortcut in the footer
	Reactions     bool
	Reply         bool
	Attachments   bool
	Markdown      bool
	RoomAvatar    bool
	TheirAvatar   bool
	AlignMineLeft bool
	SingleRoom    bool // hide the sidebar entirely
}

// DefaultFeatures returns the feature set enabled out of the box.
func DefaultFeatures() Features {
	return Features{
		Emoji:       true,
		Reactions:   true,
		Reply:       true,
		Attachments: true,
		RoomAvatar:  true,
		TheirAvatar: true,
	}
}

// Dialog is a modal prompt with up to two buttons. Event is echoed back to
// the host when a button is pressed.
type Dialog struct {
	Event string
	Body  string
	Left  string
	Right string
}

// Side identifies a dialog button.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)
