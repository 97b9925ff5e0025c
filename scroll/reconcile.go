package scroll

import "github.com/fwojciec/kai"

// MutationKind classifies how an item sequence changed.
type MutationKind int

const (
	NoStructuralChange MutationKind = iota
	RoomChanged
	PrependedOlder
	AppendedNewer
)

func (k MutationKind) String() string {
	switch k {
	case NoStructuralChange:
		return "no-structural-change"
	case RoomChanged:
		return "room-changed"
	case PrependedOlder:
		return "prepended-older"
	case AppendedNewer:
		return "appended-newer"
	default:
		return "unknown"
	}
}

// Mutation is the result of Reconcile.
type Mutation struct {
	Kind MutationKind
	// Newest is the last item of the next sequence for growing mutations.
	Newest kai.Item
	// Inconsistent marks a longer sequence that keeps the room but contains
	// neither the previous first item at its head nor anywhere later. It is
	// treated as an append whose sender is unknown.
	Inconsistent bool
}

// Reconcile classifies the change from prev to next. Both sequences are
// ordered oldest to newest. The room is compared first, so a sequence from
// another room is RoomChanged even when it is also longer. An empty
// sequence has no room, which makes the first page of any room a room
// change.
func Reconcile(prev, next []kai.Item) Mutation {
	if roomOf(prev) != roomOf(next) {
		return Mutation{Kind: RoomChanged}
	}
	if len(next) <= len(prev) {
		return Mutation{Kind: NoStructuralChange}
	}
	newest := next[len(next)-1]
	if len(prev) == 0 {
		// Items without a room id.
		return Mutation{Kind: RoomChanged}
	}
	firstID := prev[0].ItemID()
	if next[0].ItemID() == firstID {
		return Mutation{Kind: AppendedNewer, Newest: newest}
	}
	for _, it := range next[1:] {
		if it.ItemID() == firstID {
			return Mutation{Kind: PrependedOlder, Newest: newest}
		}
	}
	return Mutation{Kind: AppendedNewer, Newest: newest, Inconsistent: true}
}

func roomOf(items []kai.Item) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].ItemRoomID()
}
