package kai

// Update is a sealed interface representing data pushed by the host into
// the widget. Each update replaces the value of exactly one channel.
// The unexported marker method prevents external implementations.
type Update interface {
	update()
}

// CurrentUserUpdate sets the local user.
type CurrentUserUpdate struct {
	UserID string
}

func (CurrentUserUpdate) update() {}

// RoomsUpdate replaces the room list state.
type RoomsUpdate struct {
	State RoomState
}

func (RoomsUpdate) update() {}

// MessagesUpdate replaces the message feed state. The host must supply a
// new Items slice for every structural change; mutating the previous slice
// in place is not observed.
type MessagesUpdate struct {
	State MessageState
}

func (MessagesUpdate) update() {}

// SuggestionsUpdate replaces only the suggestions of the message state.
type SuggestionsUpdate struct {
	Suggestions []Suggestion
}

func (SuggestionsUpdate) update() {}

// ReplyUpdate sets or clears the message being replied to.
type ReplyUpdate struct {
	ReplyTo *Reply
}

func (ReplyUpdate) update() {}

// AttachmentsUpdate replaces only the pending attachments of the footer.
type AttachmentsUpdate struct {
	Attachments []Attachment
}

func (AttachmentsUpdate) update() {}

// FooterUpdate replaces the footer state.
type FooterUpdate struct {
	State FooterState
}

func (FooterUpdate) update() {}

// FeaturesUpdate replaces the feature toggles.
type FeaturesUpdate struct {
	Features Features
}

func (FeaturesUpdate) update() {}

// I18nUpdate overlays a partial string table on the defaults.
type I18nUpdate struct {
	Strings map[string]string
}

func (I18nUpdate) update() {}

// ThemeUpdate switches the colour theme by name ("light" or "dark").
type ThemeUpdate struct {
	Name string
}

func (ThemeUpdate) update() {}

// SidebarUpdate shows or hides the room list.
type SidebarUpdate struct {
	Visible bool
}

func (SidebarUpdate) update() {}

// DialogUpdate shows a modal dialog, or hides it when Dialog is nil.
type DialogUpdate struct {
	Dialog *Dialog
}

func (DialogUpdate) update() {}

// Interface compliance checks.
var (
	_ Update = CurrentUserUpdate{}
	_ Update = RoomsUpdate{}
	_ Update = MessagesUpdate{}
	_ Update = SuggestionsUpdate{}
	_ Update = ReplyUpdate{}
	_ Update = AttachmentsUpdate{}
	_ Update = FooterUpdate{}
	_ Update = FeaturesUpdate{}
	_ Update = I18nUpdate{}
	_ Update = ThemeUpdate{}
	_ Update = SidebarUpdate{}
	_ Update = DialogUpdate{}
)
