package kai

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// ValidateItems checks the ordering contract of a message list: item ids
// are unique, every item belongs to the same room, and message timestamps
// never decrease. The list is never re-sorted.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return nil
	}
	roomID := items[0].ItemRoomID()
	seen := make(map[string]struct{}, len(items))
	var lastTS string
	for i, it := range items {
		id := it.ItemID()
		if id == "" {
			return fmt.Errorf("item %d has empty id: %w", i, ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate item id %q: %w", id, ErrValidation)
		}
		seen[id] = struct{}{}
		if it.ItemRoomID() != roomID {
			return fmt.Errorf("item %q belongs to room %q, want %q: %w", id, it.ItemRoomID(), roomID, ErrValidation)
		}
		m, ok := it.(Message)
		if !ok || m.Timestamp == "" {
			continue
		}
		if m.Timestamp < lastTS {
			return fmt.Errorf("message %q timestamp %q precedes %q: %w", id, m.Timestamp, lastTS, ErrValidation)
		}
		lastTS = m.Timestamp
	}
	return nil
}

// ValidateEmoji checks that s is exactly one user-perceived character.
func ValidateEmoji(s string) error {
	if n := uniseg.GraphemeClusterCount(s); n != 1 {
		return fmt.Errorf("emoji must be a single grapheme, got %d in %q: %w", n, s, ErrValidation)
	}
	return nil
}
