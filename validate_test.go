package kai_test

import (
	"testing"

	"github.com/fwojciec/kai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItems(t *testing.T) {
	t.Parallel()

	t.Run("empty is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, kai.ValidateItems(nil))
	})

	t.Run("ordered single room", func(t *testing.T) {
		t.Parallel()
		items := []kai.Item{
			kai.Message{ID: "m1", RoomID: "r1", Timestamp: "2024-01-01T10:00"},
			kai.Divider{ID: "d1", RoomID: "r1", Label: "Today"},
			kai.Message{ID: "m2", RoomID: "r1", Timestamp: "2024-01-01T10:00"},
			kai.Message{ID: "m3", RoomID: "r1", Timestamp: "2024-01-02T09:00"},
		}
		assert.NoError(t, kai.ValidateItems(items))
	})

	t.Run("duplicate id", func(t *testing.T) {
		t.Parallel()
		items := []kai.Item{
			kai.Message{ID: "m1", RoomID: "r1"},
			kai.Message{ID: "m1", RoomID: "r1"},
		}
		err := kai.ValidateItems(items)
		require.ErrorIs(t, err, kai.ErrValidation)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()
		err := kai.ValidateItems([]kai.Item{kai.Divider{RoomID: "r1"}})
		require.ErrorIs(t, err, kai.ErrValidation)
	})

	t.Run("mixed rooms", func(t *testing.T) {
		t.Parallel()
		items := []kai.Item{
			kai.Message{ID: "m1", RoomID: "r1"},
			kai.Message{ID: "m2", RoomID: "r2"},
		}
		err := kai.ValidateItems(items)
		require.ErrorIs(t, err, kai.ErrValidation)
		assert.Contains(t, err.Error(), `"r2"`)
	})

	t.Run("decreasing timestamp", func(t *testing.T) {
		t.Parallel()
		items := []kai.Item{
			kai.Message{ID: "m1", RoomID: "r1", Timestamp: "2024-01-02"},
			kai.Message{ID: "m2", RoomID: "r1", Timestamp: "2024-01-01"},
		}
		err := kai.ValidateItems(items)
		require.ErrorIs(t, err, kai.ErrValidation)
		assert.Contains(t, err.Error(), "precedes")
	})
}

func TestValidateEmoji(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"👍", "❤️", "👨‍👩‍👧", "🇵🇱", "a"} {
		assert.NoError(t, kai.ValidateEmoji(ok), ok)
	}
	for _, bad := range []string{"", "👍👍", "ab"} {
		assert.ErrorIs(t, kai.ValidateEmoji(bad), kai.ErrValidation, bad)
	}
}
