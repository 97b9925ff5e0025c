package scroll_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/scroll"
	"github.com/stretchr/testify/assert"
)

func msgs(room string, from, to int) []kai.Item {
	items := make([]kai.Item, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, kai.Message{ID: fmt.Sprintf("m%03d", i), RoomID: room, SenderID: "other"})
	}
	return items
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	base := msgs("r1", 10, 20)
	reacted := append([]kai.Item(nil), base...)
	reacted[3] = kai.Message{ID: "m013", RoomID: "r1", Reactions: map[string][]string{"👍": {"u1"}}}

	tests := []struct {
		name         string
		prev, next   []kai.Item
		kind         scroll.MutationKind
		newest       string
		inconsistent bool
	}{
		{"both empty", nil, nil, scroll.NoStructuralChange, "", false},
		{"first page", nil, base, scroll.RoomChanged, "", false},
		{"cleared", base, nil, scroll.RoomChanged, "", false},
		{"other room", base, msgs("r2", 0, 30), scroll.RoomChanged, "", false},
		{"other room shorter", base, msgs("r2", 0, 3), scroll.RoomChanged, "", false},
		{"same slice", base, base, scroll.NoStructuralChange, "", false},
		{"reaction in place", base, reacted, scroll.NoStructuralChange, "", false},
		{"shrunk", base, base[2:], scroll.NoStructuralChange, "", false},
		{"prepended", base, msgs("r1", 0, 20), scroll.PrependedOlder, "m019", false},
		{"appended", base, msgs("r1", 10, 21), scroll.AppendedNewer, "m020", false},
		{"prepended and appended", base, msgs("r1", 5, 25), scroll.PrependedOlder, "m024", false},
		{"replaced in same room", base, msgs("r1", 50, 70), scroll.AppendedNewer, "m069", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := scroll.Reconcile(tt.prev, tt.next)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.inconsistent, got.Inconsistent)
			if tt.newest == "" {
				return
			}
			assert.Equal(t, tt.newest, got.Newest.ItemID())
		})
	}
}

func TestReconcile_EmptyRoomIDs(t *testing.T) {
	t.Parallel()

	next := []kai.Item{kai.Divider{ID: "d1"}}
	assert.Equal(t, scroll.RoomChanged, scroll.Reconcile(nil, next).Kind)
}

func TestMutationKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "room-changed", scroll.RoomChanged.String())
	assert.Equal(t, "prepended-older", scroll.PrependedOlder.String())
	assert.Equal(t, "appended-newer", scroll.AppendedNewer.String())
	assert.Equal(t, "no-structural-change", scroll.NoStructuralChange.String())
}
