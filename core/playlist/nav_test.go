package playlist

import (
	"testing"

	"github.com/e-dream-ai/dreamstream/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dreamItem(id, dreamID int64) model.PlaylistItem {
	return model.PlaylistItem{ID: id, ItemType: model.PlaylistItemTypeDream, DreamID: dreamID}
}

func keyframeItem(id, keyframeID int64) model.PlaylistItem {
	return model.PlaylistItem{ID: id, ItemType: model.PlaylistItemTypeKeyframe, KeyframeID: keyframeID}
}

func TestResolve(t *testing.T) {
	pl := &model.Playlist{
		ID: 1,
		Items: []model.PlaylistItem{
			dreamItem(10, 100),
			keyframeItem(11, 500),
			dreamItem(12, 101),
			dreamItem(13, 102),
		},
	}

	t.Run("middle of the playlist", func(t *testing.T) {
		got := Resolve(&model.Dream{ID: 101}, pl)
		require.NotNil(t, got.Previous)
		require.NotNil(t, got.Next)
		// Neighbors are positional, whatever their type.
		assert.Equal(t, int64(11), got.Previous.ID)
		assert.Equal(t, int64(13), got.Next.ID)
	})

	t.Run("first item has no previous", func(t *testing.T) {
		got := Resolve(&model.Dream{ID: 100}, pl)
		assert.Nil(t, got.Previous)
		require.NotNil(t, got.Next)
		assert.Equal(t, int64(11), got.Next.ID)
	})

	t.Run("last item has no next", func(t *testing.T) {
		got := Resolve(&model.Dream{ID: 102}, pl)
		assert.Nil(t, got.Next)
		require.NotNil(t, got.Previous)
		assert.Equal(t, int64(12), got.Previous.ID)
	})

	t.Run("dream not in the playlist", func(t *testing.T) {
		got := Resolve(&model.Dream{ID: 999}, pl)
		assert.Nil(t, got.Next)
		assert.Nil(t, got.Previous)
	})

	t.Run("keyframes never match a dream identity", func(t *testing.T) {
		// Keyframe 500 shares its id space with nothing dream-side.
		got := Resolve(&model.Dream{ID: 500}, pl)
		assert.Nil(t, got.Next)
		assert.Nil(t, got.Previous)
	})

	t.Run("first occurrence wins on duplicates", func(t *testing.T) {
		dup := &model.Playlist{
			Items: []model.PlaylistItem{
				dreamItem(20, 200),
				dreamItem(21, 201),
				dreamItem(22, 200),
				dreamItem(23, 202),
			},
		}
		got := Resolve(&model.Dream{ID: 200}, dup)
		assert.Nil(t, got.Previous)
		require.NotNil(t, got.Next)
		assert.Equal(t, int64(21), got.Next.ID)
	})

	t.Run("nil and empty inputs", func(t *testing.T) {
		assert.Equal(t, NavigationResult{}, Resolve(nil, pl))
		assert.Equal(t, NavigationResult{}, Resolve(&model.Dream{ID: 100}, nil))
		assert.Equal(t, NavigationResult{}, Resolve(&model.Dream{ID: 100}, &model.Playlist{}))
	})

	t.Run("single item playlist", func(t *testing.T) {
		single := &model.Playlist{Items: []model.PlaylistItem{dreamItem(30, 300)}}
		got := Resolve(&model.Dream{ID: 300}, single)
		assert.Nil(t, got.Next)
		assert.Nil(t, got.Previous)
	})

	t.Run("playlist is not mutated", func(t *testing.T) {
		before := make([]model.PlaylistItem, len(pl.Items))
		copy(before, pl.Items)

		Resolve(&model.Dream{ID: 101}, pl)
		assert.Equal(t, before, pl.Items)
	})
}
