package bubbletea

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/bus"
)

// Channel keys shared by the widget components.
var (
	CurrentUserKey = bus.NewKey[string]("current-user-id")
	RoomKey        = bus.NewKey[kai.RoomState]("room")
	MessageKey     = bus.NewKey[kai.MessageState]("message")
	FooterKey      = bus.NewKey[kai.FooterState]("footer")
	FeaturesKey    = bus.NewKey[kai.Features]("features")
	I18nKey        = bus.NewKey[kai.I18n]("i18n")
	ThemeKey       = bus.NewKey[kai.Theme]("theme")
	SidebarKey     = bus.NewKey[bool]("sidebar-visible")
	DialogKey      = bus.NewKey[*kai.Dialog]("dialog")
)

// channels holds the root's writers, one per channel.
type channels struct {
	logger *slog.Logger

	currentUser *bus.Writer[string]
	room        *bus.Writer[kai.RoomState]
	message     *bus.Writer[kai.MessageState]
	footer      *bus.Writer[kai.FooterState]
	features    *bus.Writer[kai.Features]
	i18n        *bus.Writer[kai.I18n]
	theme       *bus.Writer[kai.Theme]
	sidebar     *bus.Writer[bool]
	dialog      *bus.Writer[*kai.Dialog]
}

func provideChannels(b *bus.Bus, theme kai.Theme, logger *slog.Logger) *channels {
	return &channels{
		logger:      logger,
		currentUser: bus.Provide(b, CurrentUserKey, ""),
		room:        bus.Provide(b, RoomKey, kai.RoomState{}),
		message:     bus.Provide(b, MessageKey, kai.MessageState{}),
		footer:      bus.Provide(b, FooterKey, kai.FooterState{EnterToSend: true}),
		features:    bus.Provide(b, FeaturesKey, kai.DefaultFeatures()),
		i18n:        bus.Provide(b, I18nKey, kai.DefaultI18n()),
		theme:       bus.Provide(b, ThemeKey, theme),
		sidebar:     bus.Provide(b, SidebarKey, true),
		dialog:      bus.Provide(b, DialogKey, (*kai.Dialog)(nil)),
	}
}

// apply publishes u on the channel it targets. Data problems in message
// items are logged and the update is still applied; an unknown theme is
// rejected.
func (c *channels) apply(u kai.Update) error {
	switch u := u.(type) {
	case kai.CurrentUserUpdate:
		c.currentUser.Publish(u.UserID)
	case kai.RoomsUpdate:
		c.room.Publish(u.State)
	case kai.MessagesUpdate:
		if err := kai.ValidateItems(u.State.Items); err != nil {
			c.logger.Warn("message items rejected by validation", "error", err)
		}
		c.message.Publish(u.State)
	case kai.SuggestionsUpdate:
		c.message.Update(func(s kai.MessageState) kai.MessageState {
			s.Suggestions = u.Suggestions
			return s
		})
	case kai.ReplyUpdate:
		c.message.Update(func(s kai.MessageState) kai.MessageState {
			s.ReplyTo = u.ReplyTo
			return s
		})
	case kai.AttachmentsUpdate:
		c.footer.Update(func(s kai.FooterState) kai.FooterState {
			s.Attachments = u.Attachments
			return s
		})
	case kai.FooterUpdate:
		c.footer.Publish(u.State)
	case kai.FeaturesUpdate:
		c.features.Publish(u.Features)
	case kai.I18nUpdate:
		if err := kai.ValidateI18nKeys(u.Strings); err != nil {
			c.logger.Warn("ignoring i18n keys", "error", err)
		}
		c.i18n.Publish(kai.DefaultI18n().Merge(u.Strings))
	case kai.ThemeUpdate:
		t, err := kai.ThemeByName(u.Name)
		if err != nil {
			return fmt.Errorf("apply theme: %w", err)
		}
		c.theme.Publish(t)
	case kai.SidebarUpdate:
		c.sidebar.Publish(u.Visible)
	case kai.DialogUpdate:
		c.dialog.Publish(u.Dialog)
	default:
		return fmt.Errorf("apply %T: %w", u, kai.ErrValidation)
	}
	return nil
}
