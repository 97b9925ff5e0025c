package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/kai"
)

// SeedOptions controls the demo data written by Seed.
type SeedOptions struct {
	// Rooms is the number of rooms to create.
	Rooms int
	// Messages is the number of messages per room.
	Messages int
	// Users are the senders messages rotate through.
	Users []kai.User
}

// DefaultSeedOptions returns enough data to exercise pagination in both the
// room list and the message list.
func DefaultSeedOptions(currentUser string) SeedOptions {
	return SeedOptions{
		Rooms:    45,
		Messages: 120,
		Users: []kai.User{
			{ID: currentUser, Name: currentUser},
			{ID: "ada", Name: "Ada"},
			{ID: "linus", Name: "Linus"},
			{ID: "grace", Name: "Grace"},
		},
	}
}

var seedLines = []string{
	"Morning! Anyone looked at the build yet?",
	"Yes, it's **green** again after the cache fix.",
	"Can we move the sync to `14:00`?",
	"Works for me.",
	"Here is the plan:\n- ship the sidebar\n- then pagination\n- then reactions",
	"Sounds good 👍",
	"I'll write the migration tonight.",
	"Reminder: demo on Friday.",
}

// Seed fills an empty store with demo rooms and messages. A store that
// already has rooms is left untouched.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM rooms`).Scan(&n); err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if n > 0 || len(opts.Users) == 0 {
		return nil
	}

	// Seeded rows are backdated a minute apart so they all precede rows
	// written afterwards.
	clock := s.now
	defer func() { s.now = clock }()
	// Each room and each message reads the clock at most twice.
	ticks := 2 * opts.Rooms * (1 + opts.Messages)
	start := clock().Add(-time.Duration(ticks+1) * time.Minute)
	tick := 0
	s.now = func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}

	for r := range opts.Rooms {
		room, err := s.CreateRoom(ctx, fmt.Sprintf("room-%02d", r+1), fmt.Sprintf("Room %d", r+1))
		if err != nil {
			return err
		}
		var prev *kai.Message
		for i := range opts.Messages {
			u := opts.Users[(r+i)%len(opts.Users)]
			nm := NewMessage{
				RoomID:     room.ID,
				SenderID:   u.ID,
				SenderName: u.Name,
				Content:    fmt.Sprintf("%s (#%d)", seedLines[i%len(seedLines)], i+1),
			}
			if prev != nil && i%17 == 0 {
				reply := kai.ReplyFrom(*prev)
				nm.ReplyTo = &reply
			}
			if i%23 == 5 {
				nm.Attachments = []NewAttachment{{Name: "notes.pdf", Size: int64(1024 * (i + 1))}}
			}
			m, err := s.InsertMessage(ctx, nm)
			if err != nil {
				return err
			}
			if i%11 == 3 {
				if _, err := s.ToggleReaction(ctx, m.ID, "👍", opts.Users[0].ID); err != nil {
					return err
				}
			}
			prev = &m
		}
	}
	return nil
}
