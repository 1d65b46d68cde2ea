package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("known actions resolve", func(t *testing.T) {
		entry, ok := Lookup(string(ActionLikeCurrentDream))
		require.True(t, ok)
		assert.Equal(t, ActionLikeCurrentDream, entry.Action)
		assert.Equal(t, "remote.like", entry.NotifyKey)
		assert.Equal(t, "l", entry.Key)
		assert.False(t, entry.Silent)
	})

	t.Run("unknown event is not in the catalog", func(t *testing.T) {
		_, ok := Lookup("self_destruct")
		assert.False(t, ok)

		_, ok = Lookup("")
		assert.False(t, ok)
	})

	t.Run("playing is silent", func(t *testing.T) {
		entry, ok := Lookup(string(ActionPlaying))
		require.True(t, ok)
		assert.True(t, entry.Silent)
		assert.Empty(t, entry.NotifyKey)
	})

	t.Run("toggle has a notify key but stays silent", func(t *testing.T) {
		entry, ok := Lookup(string(ActionTogglePlayback))
		require.True(t, ok)
		assert.True(t, entry.Silent)
		assert.NotEmpty(t, entry.NotifyKey)
	})
}

func TestDiscreteLevels(t *testing.T) {
	for level := 1; level <= 9; level++ {
		entry, ok := Lookup(string(SetSpeed(level)))
		require.True(t, ok, "set_speed_%d missing", level)
		assert.Equal(t, "remote.set_speed", entry.NotifyKey)

		_, ok = Lookup(string(SetBrightness(level)))
		require.True(t, ok, "set_brightness_%d missing", level)
	}

	// Levels outside 1..9 are not part of the catalog.
	_, ok := Lookup(string(SetSpeed(0)))
	assert.False(t, ok)
	_, ok = Lookup(string(SetSpeed(10)))
	assert.False(t, ok)
}

func TestEntriesSortedAndComplete(t *testing.T) {
	entries := Entries()

	// 12 named actions plus 9 speed and 9 brightness levels.
	assert.Len(t, entries, 30)

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Action < entries[i].Action,
			"entries must be sorted: %s before %s", entries[i-1].Action, entries[i].Action)
	}
}
