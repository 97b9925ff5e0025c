package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/sqlite"
	"github.com/google/uuid"
)

const downloadPrefix = "download:"

var (
	roomActions  = []kai.Action{{Label: "Room info", Value: "info"}}
	myActions    = []kai.Action{{Label: "Delete", Value: "delete"}}
	theirActions = []kai.Action{{Label: "Quote", Value: "quote"}}
	suggestions  = []kai.Suggestion{
		{Text: "👍", Value: "👍"},
		{Text: "On it", Value: "On it, will report back."},
		{Text: "Later", Value: "Can we pick this up later?"},
	}
)

// host serves widget events from the sqlite store. It keeps the room and
// message state last sent to the widget so every answer is a full snapshot.
type host struct {
	store    *sqlite.Store
	user     kai.User
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	rooms    kai.RoomState
	query    string
	messages kai.MessageState
	files    map[string]sqlite.NewAttachment
	pending  []kai.Attachment
}

func newHost(store *sqlite.Store, user kai.User, pageSize int, logger *slog.Logger) *host {
	return &host{
		store:    store,
		user:     user,
		pageSize: pageSize,
		logger:   logger,
		files:    make(map[string]sqlite.NewAttachment),
	}
}

// Start loads the first page of rooms and opens the most recent one.
func (h *host) Start(ctx context.Context) ([]kai.Update, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.loadRooms(ctx); err != nil {
		return nil, err
	}
	if len(h.rooms.Rooms) == 0 {
		return []kai.Update{kai.RoomsUpdate{State: h.rooms}}, nil
	}
	return h.selectRoom(ctx, h.rooms.Rooms[0].ID)
}

// Handle implements kai.Host.
func (h *host) Handle(ctx context.Context, e kai.Event) ([]kai.Update, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Debug("event", "name", e.Name())

	switch e := e.(type) {
	case kai.EventSelectRoom:
		return h.selectRoom(ctx, e.Room.ID)
	case kai.EventLoadMore:
		return h.loadMore(ctx, e.Direction)
	case kai.EventLoadMoreRooms:
		return h.loadMoreRooms(ctx)
	case kai.EventPaginationTimeout:
		h.logger.Warn("pagination request timed out", "target", e.Target, "direction", e.Direction.String())
		return nil, nil
	case kai.EventSearchRoom:
		h.query = e.Value
		if err := h.loadRooms(ctx); err != nil {
			return nil, err
		}
		return []kai.Update{kai.RoomsUpdate{State: h.rooms}}, nil
	case kai.EventAddRoom:
		return h.addRoom(ctx)
	case kai.EventSendMessage:
		return h.send(ctx, e.RoomID, e.Content, e.ReplyTo)
	case kai.EventSelectSuggestion:
		return h.send(ctx, h.rooms.SelectedRoomID, e.Suggestion.Value, h.messages.ReplyTo)
	case kai.EventSelectFile:
		return h.attach(e.Path)
	case kai.EventRemoveAttachment:
		h.pending = slices.DeleteFunc(h.pending, func(a kai.Attachment) bool { return a.ID == e.Attachment.ID })
		delete(h.files, e.Attachment.ID)
		return []kai.Update{kai.AttachmentsUpdate{Attachments: slices.Clone(h.pending)}}, nil
	case kai.EventDownloadAttachment:
		return []kai.Update{kai.DialogUpdate{Dialog: &kai.Dialog{
			Event: downloadPrefix + e.Attachment.ID,
			Body:  fmt.Sprintf("Download %s (%s)?", e.Attachment.Name, e.Attachment.Meta),
			Left:  "Cancel",
			Right: "Download",
		}}}, nil
	case kai.EventSelectEmoji:
		return h.toggleReaction(ctx, e.MessageID, e.Emoji, e.CurrentUserID)
	case kai.EventClickReaction:
		return h.toggleReaction(ctx, e.MessageID, e.Emoji, h.user.ID)
	case kai.EventReplyToMessage:
		reply := e.ReplyTo
		h.messages.ReplyTo = &reply
		return []kai.Update{kai.ReplyUpdate{ReplyTo: &reply}}, nil
	case kai.EventCancelReply:
		h.messages.ReplyTo = nil
		return []kai.Update{kai.ReplyUpdate{}}, nil
	case kai.EventSelectAction:
		return h.action(ctx, e)
	case kai.EventToggleSidebar:
		h.logger.Debug("sidebar toggled", "visible", e.Visible)
		return nil, nil
	case kai.EventClickDialogButton:
		if id, ok := strings.CutPrefix(e.Event, downloadPrefix); ok && e.Side == kai.SideRight {
			h.logger.Info("attachment download requested", "attachment", id)
		}
		return []kai.Update{kai.DialogUpdate{}}, nil
	}
	return nil, nil
}

func (h *host) loadRooms(ctx context.Context) error {
	rooms, more, err := h.store.SearchRooms(ctx, h.query, 0, h.pageSize)
	if err != nil {
		return err
	}
	h.rooms.Rooms = rooms
	h.rooms.HasMore = more
	h.rooms.IsLoading = false
	h.rooms.IsLoadingMore = false
	h.rooms.Actions = roomActions
	return nil
}

func (h *host) loadMoreRooms(ctx context.Context) ([]kai.Update, error) {
	if !h.rooms.HasMore {
		return []kai.Update{kai.RoomsUpdate{State: h.rooms}}, nil
	}
	rooms, more, err := h.store.SearchRooms(ctx, h.query, len(h.rooms.Rooms), h.pageSize)
	if err != nil {
		return nil, err
	}
	h.rooms.Rooms = append(slices.Clone(h.rooms.Rooms), rooms...)
	h.rooms.HasMore = more
	return []kai.Update{kai.RoomsUpdate{State: h.rooms}}, nil
}

func (h *host) selectRoom(ctx context.Context, roomID string) ([]kai.Update, error) {
	h.rooms.SelectedRoomID = roomID
	updates := []kai.Update{
		kai.RoomsUpdate{State: h.rooms},
		kai.MessagesUpdate{State: kai.MessageState{IsLoading: true}},
	}

	msgs, _, err := h.store.ListMessagesBefore(ctx, roomID, "", h.pageSize)
	if err != nil {
		return updates, err
	}
	h.messages = kai.MessageState{
		Items:        items(msgs),
		Suggestions:  suggestions,
		MyActions:    myActions,
		TheirActions: theirActions,
	}
	h.pending = nil
	clear(h.files)
	return append(updates,
		kai.MessagesUpdate{State: h.messages},
		kai.AttachmentsUpdate{},
	), nil
}

func (h *host) loadMore(ctx context.Context, dir kai.Direction) ([]kai.Update, error) {
	// History only grows at the bottom through send, so a bottom request
	// and a top request on an empty room are answered with the current
	// state.
	if dir != kai.Top || len(h.messages.Items) == 0 {
		return []kai.Update{kai.MessagesUpdate{State: h.messages}}, nil
	}
	first := h.messages.Items[0].ItemID()
	older, _, err := h.store.ListMessagesBefore(ctx, h.rooms.SelectedRoomID, first, h.pageSize)
	if err != nil {
		return nil, err
	}
	h.messages.Items = append(items(older), h.messages.Items...)
	return []kai.Update{kai.MessagesUpdate{State: h.messages}}, nil
}

func (h *host) send(ctx context.Context, roomID, content string, reply *kai.Reply) ([]kai.Update, error) {
	if roomID == "" {
		return nil, nil
	}
	nm := sqlite.NewMessage{
		RoomID:     roomID,
		SenderID:   h.user.ID,
		SenderName: h.user.Name,
		Content:    content,
		ReplyTo:    reply,
	}
	for _, a := range h.pending {
		nm.Attachments = append(nm.Attachments, h.files[a.ID])
	}
	m, err := h.store.InsertMessage(ctx, nm)
	if err != nil {
		return nil, err
	}

	h.pending = nil
	clear(h.files)
	h.messages.ReplyTo = nil
	if roomID == h.rooms.SelectedRoomID {
		h.messages.Items = append(slices.Clone(h.messages.Items), m)
	}
	if err := h.bumpRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return []kai.Update{
		kai.MessagesUpdate{State: h.messages},
		kai.AttachmentsUpdate{},
		kai.RoomsUpdate{State: h.rooms},
	}, nil
}

// bumpRoom moves a room to the top of the loaded room list with fresh
// subtitle and meta.
func (h *host) bumpRoom(ctx context.Context, roomID string) error {
	room, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	rooms := slices.DeleteFunc(slices.Clone(h.rooms.Rooms), func(r kai.Room) bool { return r.ID == roomID })
	h.rooms.Rooms = append([]kai.Room{room}, rooms...)
	return nil
}

func (h *host) addRoom(ctx context.Context) ([]kai.Update, error) {
	room, err := h.store.CreateRoom(ctx, "", fmt.Sprintf("New room %s", uuid.NewString()[:4]))
	if err != nil {
		return nil, err
	}
	h.query = ""
	if err := h.loadRooms(ctx); err != nil {
		return nil, err
	}
	return h.selectRoom(ctx, room.ID)
}

func (h *host) attach(path string) ([]kai.Update, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attach file: %s is a directory: %w", path, kai.ErrValidation)
	}
	a := kai.Attachment{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
		Meta: humanize.Bytes(uint64(info.Size())),
	}
	h.files[a.ID] = sqlite.NewAttachment{Name: a.Name, Size: info.Size()}
	h.pending = append(slices.Clone(h.pending), a)
	return []kai.Update{kai.AttachmentsUpdate{Attachments: slices.Clone(h.pending)}}, nil
}

func (h *host) toggleReaction(ctx context.Context, messageID, emoji, userID string) ([]kai.Update, error) {
	m, err := h.store.ToggleReaction(ctx, messageID, emoji, userID)
	if err != nil {
		return nil, err
	}
	return h.replace(m), nil
}

// replace swaps a message in the loaded items for its new version.
func (h *host) replace(m kai.Message) []kai.Update {
	next := slices.Clone(h.messages.Items)
	for i, it := range next {
		if it.ItemID() == m.ID {
			next[i] = m
		}
	}
	h.messages.Items = next
	return []kai.Update{kai.MessagesUpdate{State: h.messages}}
}

func (h *host) action(ctx context.Context, e kai.EventSelectAction) ([]kai.Update, error) {
	switch {
	case e.Type == kai.ActionMessage && e.Action.Value == "delete":
		m, err := h.store.DeleteMessage(ctx, e.MessageID)
		if err != nil {
			return nil, err
		}
		return h.replace(m), nil
	case e.Type == kai.ActionMessage && e.Action.Value == "quote":
		for _, it := range h.messages.Items {
			if m, ok := it.(kai.Message); ok && m.ID == e.MessageID {
				reply := kai.ReplyFrom(m)
				h.messages.ReplyTo = &reply
				return []kai.Update{kai.ReplyUpdate{ReplyTo: &reply}}, nil
			}
		}
		return nil, fmt.Errorf("message %s: %w", e.MessageID, kai.ErrNotFound)
	case e.Type == kai.ActionRoom && e.Action.Value == "info":
		room, err := h.store.GetRoom(ctx, e.RoomID)
		if err != nil {
			return nil, err
		}
		return []kai.Update{kai.DialogUpdate{Dialog: &kai.Dialog{
			Event: "room-info",
			Body:  fmt.Sprintf("%s\nLast activity %s", room.Title, room.Meta),
			Right: "Close",
		}}}, nil
	}
	h.logger.Warn("unknown action", "type", e.Type, "action", e.Action.Value)
	return nil, nil
}

func items(msgs []kai.Message) []kai.Item {
	out := make([]kai.Item, len(msgs))
	for i, m := range msgs {
		out[i] = m
	}
	return out
}

// Interface compliance check.
var _ kai.Host = (*host)(nil)
