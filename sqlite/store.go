// Package sqlite stores rooms and messages for the demo host in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/kai"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed room and message store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for new rows and relative room times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the database at path, creating it and its directory when
// missing. Use ":memory:" for a throwaway store.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS rooms (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rooms_updated ON rooms(updated_at DESC, id);

CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  room_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  sender_name TEXT NOT NULL,
  content TEXT NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0,
  reply_id TEXT,
  reply_sender_id TEXT,
  reply_sender_name TEXT,
  reply_content TEXT,
  created_at TEXT NOT NULL,
  FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at, id);

CREATE TABLE IF NOT EXISTS reactions (
  message_id TEXT NOT NULL,
  emoji TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  PRIMARY KEY(message_id, emoji, user_id),
  FOREIGN KEY(message_id) REFERENCES messages(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS attachments (
  id TEXT PRIMARY KEY,
  message_id TEXT NOT NULL,
  name TEXT NOT NULL,
  size INTEGER NOT NULL,
  FOREIGN KEY(message_id) REFERENCES messages(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_attachments_message ON attachments(message_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

// CreateRoom inserts a room and returns it.
func (s *Store) CreateRoom(ctx context.Context, id, title string) (kai.Room, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rooms (id, title, updated_at) VALUES (?, ?, ?)`, id, title, now)
	if err != nil {
		return kai.Room{}, fmt.Errorf("create room: %w", err)
	}
	return s.GetRoom(ctx, id)
}

// GetRoom returns one room.
func (s *Store) GetRoom(ctx context.Context, id string) (kai.Room, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, subtitle, updated_at FROM rooms WHERE id = ?`, id)
	r, err := s.scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return kai.Room{}, fmt.Errorf("room %s: %w", id, kai.ErrNotFound)
	}
	if err != nil {
		return kai.Room{}, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// ListRooms returns a page of rooms, most recently active first, and
// whether more rooms follow.
func (s *Store) ListRooms(ctx context.Context, offset, limit int) ([]kai.Room, bool, error) {
	return s.queryRooms(ctx, "", offset, limit)
}

// SearchRooms is ListRooms restricted to rooms whose title contains query,
// ignoring case. An empty query matches every room.
func (s *Store) SearchRooms(ctx context.Context, query string, offset, limit int) ([]kai.Room, bool, error) {
	return s.queryRooms(ctx, query, offset, limit)
}

func (s *Store) queryRooms(ctx context.Context, query string, offset, limit int) ([]kai.Room, bool, error) {
	if limit < 1 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, subtitle, updated_at
FROM rooms
WHERE ? = '' OR instr(lower(title), lower(?)) > 0
ORDER BY updated_at DESC, id
LIMIT ? OFFSET ?`, query, query, limit+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]kai.Room, 0, limit+1)
	for rows.Next() {
		r, err := s.scanRoom(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list rooms: %w", err)
	}
	if len(rooms) > limit {
		return rooms[:limit], true, nil
	}
	return rooms, false, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRoom(row scanner) (kai.Room, error) {
	var (
		r       kai.Room
		updated string
	)
	if err := row.Scan(&r.ID, &r.Title, &r.Subtitle, &updated); err != nil {
		return kai.Room{}, err
	}
	if t, err := time.Parse(timeLayout, updated); err == nil {
		r.Meta = humanize.RelTime(t, s.now(), "ago", "from now")
	}
	return r, nil
}

// NewMessage is the input to InsertMessage.
type NewMessage struct {
	RoomID      string
	SenderID    string
	SenderName  string
	Content     string
	ReplyTo     *kai.Reply
	Attachments []NewAttachment
}

// NewAttachment is a file stored with a new message.
type NewAttachment struct {
	Name string
	Size int64
}

// InsertMessage stores a message at the current time, bumps its room to the
// top of the room list and returns the stored message.
func (s *Store) InsertMessage(ctx context.Context, m NewMessage) (kai.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kai.Message{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := s.stamp()

	var replyID, replySenderID, replySenderName, replyContent sql.NullString
	if m.ReplyTo != nil {
		replyID = sql.NullString{String: m.ReplyTo.MessageID, Valid: true}
		replySenderID = sql.NullString{String: m.ReplyTo.SenderID, Valid: true}
		replySenderName = sql.NullString{String: m.ReplyTo.SenderName, Valid: true}
		replyContent = sql.NullString{String: m.ReplyTo.Content, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO messages (id, room_id, sender_id, sender_name, content,
  reply_id, reply_sender_id, reply_sender_name, reply_content, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.RoomID, m.SenderID, m.SenderName, m.Content,
		replyID, replySenderID, replySenderName, replyContent, now)
	if err != nil {
		return kai.Message{}, fmt.Errorf("insert message: %w", err)
	}

	for _, a := range m.Attachments {
		_, err = tx.ExecContext(ctx, `
INSERT INTO attachments (id, message_id, name, size) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), id, a.Name, a.Size)
		if err != nil {
			return kai.Message{}, fmt.Errorf("insert attachment: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
UPDATE rooms SET subtitle = ?, updated_at = ? WHERE id = ?`,
		preview(m.Content), now, m.RoomID)
	if err != nil {
		return kai.Message{}, fmt.Errorf("touch room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return kai.Message{}, fmt.Errorf("room %s: %w", m.RoomID, kai.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return kai.Message{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetMessage(ctx, id)
}

func preview(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	return line
}

const messageColumns = `id, room_id, sender_id, sender_name, content, deleted,
  reply_id, reply_sender_id, reply_sender_name, reply_content, created_at`

// GetMessage returns one message with its reactions and attachments.
func (s *Store) GetMessage(ctx context.Context, id string) (kai.Message, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return kai.Message{}, fmt.Errorf("message %s: %w", id, kai.ErrNotFound)
	}
	if err != nil {
		return kai.Message{}, fmt.Errorf("get message: %w", err)
	}
	msgs := []kai.Message{m}
	if err := s.decorate(ctx, msgs); err != nil {
		return kai.Message{}, err
	}
	return msgs[0], nil
}

// ListMessagesBefore returns up to limit messages of a room that precede the
// message with id before, oldest first, and whether older messages remain.
// An empty before returns the newest page.
func (s *Store) ListMessagesBefore(ctx context.Context, roomID, before string, limit int) ([]kai.Message, bool, error) {
	if limit < 1 {
		limit = 30
	}

	var (
		rows *sql.Rows
		err  error
	)
	if before == "" {
		rows, err = s.db.QueryContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE room_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`, roomID, limit+1)
	} else {
		var cursor string
		err = s.db.QueryRowContext(ctx, `
SELECT created_at FROM messages WHERE id = ? AND room_id = ?`, before, roomID).Scan(&cursor)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("message %s: %w", before, kai.ErrNotFound)
		}
		if err != nil {
			return nil, false, fmt.Errorf("page cursor: %w", err)
		}
		rows, err = s.db.QueryContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE room_id = ? AND (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?`, roomID, cursor, cursor, before, limit+1)
	}
	if err != nil {
		return nil, false, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]kai.Message, 0, limit+1)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list messages: %w", err)
	}

	more := len(msgs) > limit
	if more {
		msgs = msgs[:limit]
	}
	slices.Reverse(msgs)
	if err := s.decorate(ctx, msgs); err != nil {
		return nil, false, err
	}
	return msgs, more, nil
}

func scanMessage(row scanner) (kai.Message, error) {
	var (
		m                                              kai.Message
		deleted                                        bool
		replyID, replySenderID, replyName, replyContent sql.NullString
	)
	err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.Content, &deleted,
		&replyID, &replySenderID, &replyName, &replyContent, &m.Timestamp)
	if err != nil {
		return kai.Message{}, err
	}
	m.IsDeleted = deleted
	if replyID.Valid {
		m.ReplyTo = &kai.Reply{
			MessageID:  replyID.String,
			SenderID:   replySenderID.String,
			SenderName: replyName.String,
			Content:    replyContent.String,
		}
	}
	return m, nil
}

// decorate loads reactions and attachments for msgs in place.
func (s *Store) decorate(ctx context.Context, msgs []kai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	index := make(map[string]int, len(msgs))
	args := make([]any, len(msgs))
	for i, m := range msgs {
		index[m.ID] = i
		args[i] = m.ID
	}
	in := "(" + strings.TrimSuffix(strings.Repeat("?,", len(msgs)), ",") + ")"

	rows, err := s.db.QueryContext(ctx, `
SELECT message_id, emoji, user_id FROM reactions
WHERE message_id IN `+in+`
ORDER BY created_at, user_id`, args...)
	if err != nil {
		return fmt.Errorf("list reactions: %w", err)
	}
	for rows.Next() {
		var id, emoji, user string
		if err := rows.Scan(&id, &emoji, &user); err != nil {
			rows.Close()
			return fmt.Errorf("scan reaction: %w", err)
		}
		m := &msgs[index[id]]
		if m.Reactions == nil {
			m.Reactions = make(map[string][]string)
		}
		m.Reactions[emoji] = append(m.Reactions[emoji], user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list reactions: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
SELECT id, message_id, name, size FROM attachments
WHERE message_id IN `+in+`
ORDER BY rowid`, args...)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a    kai.Attachment
			msg  string
			size int64
		)
		if err := rows.Scan(&a.ID, &msg, &a.Name, &size); err != nil {
			return fmt.Errorf("scan attachment: %w", err)
		}
		a.Meta = humanize.Bytes(uint64(size))
		m := &msgs[index[msg]]
		m.Attachments = append(m.Attachments, a)
	}
	return rows.Err()
}

// ToggleReaction adds userID's emoji reaction to a message, or removes it
// when already present, and returns the updated message.
func (s *Store) ToggleReaction(ctx context.Context, messageID, emoji, userID string) (kai.Message, error) {
	if err := kai.ValidateEmoji(emoji); err != nil {
		return kai.Message{}, err
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM reactions WHERE message_id = ? AND emoji = ? AND user_id = ?`,
		messageID, emoji, userID)
	if err != nil {
		return kai.Message{}, fmt.Errorf("remove reaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO reactions (message_id, emoji, user_id, created_at) VALUES (?, ?, ?, ?)`,
			messageID, emoji, userID, s.stamp())
		if err != nil {
			return kai.Message{}, fmt.Errorf("add reaction: %w", err)
		}
	}
	return s.GetMessage(ctx, messageID)
}

// DeleteMessage marks a message deleted. Its row stays so the feed keeps a
// placeholder in place.
func (s *Store) DeleteMessage(ctx context.Context, id string) (kai.Message, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return kai.Message{}, fmt.Errorf("delete message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return kai.Message{}, fmt.Errorf("message %s: %w", id, kai.ErrNotFound)
	}
	return s.GetMessage(ctx, id)
}
