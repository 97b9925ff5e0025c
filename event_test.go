package kai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/kai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Name(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event kai.Event
		want  string
	}{
		{kai.EventLoadMore{Direction: kai.Top}, "load-more-top"},
		{kai.EventLoadMore{Direction: kai.Bottom}, "load-more-bottom"},
		{kai.EventLoadMoreRooms{}, "load-more-rooms"},
		{kai.EventPaginationTimeout{Target: kai.TargetMessages, Direction: kai.Top}, "pagination-timeout"},
		{kai.EventSelectRoom{}, "select-room"},
		{kai.EventAddRoom{}, "add-room"},
		{kai.EventSearchRoom{}, "search-room"},
		{kai.EventSendMessage{}, "send-message"},
		{kai.EventSelectFile{}, "select-file"},
		{kai.EventRemoveAttachment{}, "remove-attachment"},
		{kai.EventDownloadAttachment{}, "download-attachment"},
		{kai.EventSelectEmoji{}, "select-emoji"},
		{kai.EventReplyToMessage{}, "reply-to-message"},
		{kai.EventCancelReply{}, "cancel-reply"},
		{kai.EventClickReaction{}, "click-reaction"},
		{kai.EventSelectAction{}, "select-action"},
		{kai.EventSelectSuggestion{}, "select-suggestion"},
		{kai.EventToggleSidebar{}, "toggle-sidebar"},
		{kai.EventClickDialogButton{}, "click-dialog-button"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.Name())
	}
}

func TestHostFunc(t *testing.T) {
	t.Parallel()

	var got kai.Event
	h := kai.HostFunc(func(_ context.Context, e kai.Event) ([]kai.Update, error) {
		got = e
		return []kai.Update{kai.CurrentUserUpdate{UserID: "u1"}}, nil
	})

	updates, err := h.Handle(context.Background(), kai.EventCancelReply{})
	require.NoError(t, err)
	assert.Equal(t, kai.EventCancelReply{}, got)
	assert.Equal(t, []kai.Update{kai.CurrentUserUpdate{UserID: "u1"}}, updates)

	boom := errors.New("boom")
	h = func(context.Context, kai.Event) ([]kai.Update, error) { return nil, boom }
	_, err = h.Handle(context.Background(), kai.EventCancelReply{})
	assert.ErrorIs(t, err, boom)
}
