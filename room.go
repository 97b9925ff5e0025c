package kai

// Room is an entry of the room list.
type Room struct {
	ID       string
	Title    string
	Subtitle string
	Meta     string
}

// User identifies a chat participant.
type User struct {
	ID   string
	Name string
}

// Suggestion is a canned reply offered under the message list.
type Suggestion struct {
	Text  string
	Value string
}

// Action is a menu entry offered on a room or a message.
type Action struct {
	Label string
	Value string
}

// ActionType names the surface an action was selected on.
type ActionType string

const (
	ActionRoom    ActionType = "room"
	ActionMessage ActionType = "message"
)
