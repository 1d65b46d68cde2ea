package remote

import (
	"testing"

	"github.com/e-dream-ai/dreamstream/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("zero state is empty and not loading", func(t *testing.T) {
		s := NewStore()
		snap := s.Snapshot()
		assert.Nil(t, snap.CurrentDream)
		assert.False(t, snap.Loading)
	})

	t.Run("set and clear current dream", func(t *testing.T) {
		s := NewStore()
		dream := &model.Dream{ID: 1, UUID: "d-1", Name: "aurora"}

		s.SetCurrentDream(dream)
		assert.Equal(t, dream, s.Snapshot().CurrentDream)

		s.SetCurrentDream(nil)
		assert.Nil(t, s.Snapshot().CurrentDream)
	})

	t.Run("reset clears both fields", func(t *testing.T) {
		s := NewStore()
		s.SetCurrentDream(&model.Dream{ID: 1})
		s.SetLoading(true)

		s.Reset()
		snap := s.Snapshot()
		assert.Nil(t, snap.CurrentDream)
		assert.False(t, snap.Loading)
	})

	t.Run("subscribers see every change until cancelled", func(t *testing.T) {
		s := NewStore()

		var snaps []Snapshot
		cancel := s.Subscribe(func(snap Snapshot) {
			snaps = append(snaps, snap)
		})

		s.SetLoading(true)
		s.SetCurrentDream(&model.Dream{ID: 7})
		require.Len(t, snaps, 2)
		assert.True(t, snaps[0].Loading)
		assert.Equal(t, int64(7), snaps[1].CurrentDream.ID)

		cancel()
		s.SetLoading(false)
		assert.Len(t, snaps, 2)
	})
}
