package kai

import (
	"fmt"
	"sort"
	"strings"
)

// I18n holds every user-visible string of the widget.
type I18n struct {
	SearchPlaceholder      string
	NewMessageNotification string
	DeletedMessage         string
	FooterPlaceholder      string
	Loading                string
	LoadingMore            string
	Typing                 string
	ReplyingTo             string
	ScrollToBottom         string
	NoRooms                string
	NoMessages             string
	Attachments            string
	CloseHint              string
}

// DefaultI18n returns the English string table.
func DefaultI18n() I18n {
	return I18n{
		SearchPlaceholder:      "Search",
		NewMessageNotification: "New message",
		DeletedMessage:         "This message was deleted",
		FooterPlaceholder:      "Type a message",
		Loading:                "Loading...",
		LoadingMore:            "Loading more...",
		Typing:                 "typing...",
		ReplyingTo:             "Replying to",
		ScrollToBottom:         "Jump to latest",
		NoRooms:                "No rooms",
		NoMessages:             "No messages yet",
		Attachments:            "Attachments",
		CloseHint:              "esc to close",
	}
}

// i18nKeys maps table keys to the fields they set.
var i18nKeys = map[string]func(*I18n) *string{
	"CHAT_SEARCH_PLACEHOLDER":  func(t *I18n) *string { return &t.SearchPlaceholder },
	"NEW_MESSAGE_NOTIFICATION": func(t *I18n) *string { return &t.NewMessageNotification },
	"DELETED_MESSAGE":          func(t *I18n) *string { return &t.DeletedMessage },
	"FOOTER_PLACEHOLDER":       func(t *I18n) *string { return &t.FooterPlaceholder },
	"LOADING":                  func(t *I18n) *string { return &t.Loading },
	"LOADING_MORE":             func(t *I18n) *string { return &t.LoadingMore },
	"TYPING":                   func(t *I18n) *string { return &t.Typing },
	"REPLYING_TO":              func(t *I18n) *string { return &t.ReplyingTo },
	"SCROLL_TO_BOTTOM":         func(t *I18n) *string { return &t.ScrollToBottom },
	"NO_ROOMS":                 func(t *I18n) *string { return &t.NoRooms },
	"NO_MESSAGES":              func(t *I18n) *string { return &t.NoMessages },
	"ATTACHMENTS":              func(t *I18n) *string { return &t.Attachments },
	"CLOSE_HINT":               func(t *I18n) *string { return &t.CloseHint },
}

// Merge returns a copy of t with the entries of partial applied on top.
// Empty values keep the current string.
func (t I18n) Merge(partial map[string]string) I18n {
	for k, v := range partial {
		field, ok := i18nKeys[k]
		if !ok || v == "" {
			continue
		}
		*field(&t) = v
	}
	return t
}

// ValidateI18nKeys reports keys of partial that no string uses.
func ValidateI18nKeys(partial map[string]string) error {
	var unknown []string
	for k := range partial {
		if _, ok := i18nKeys[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown i18n keys %s: %w", strings.Join(unknown, ", "), ErrValidation)
}
