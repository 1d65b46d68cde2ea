package server

import (
	"testing"

	"github.com/e-dream-ai/dreamstream/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlaylistRepo maps dream IDs to playlist IDs for feed grouping tests.
// Only PlaylistIDForDream is exercised here.
type fakePlaylistRepo struct {
	playlistByDream map[int64]int64
}

func (f *fakePlaylistRepo) CreatePlaylist(playlist *model.Playlist) error           { return nil }
func (f *fakePlaylistRepo) GetPlaylistByID(id int64) (*model.Playlist, error)       { return nil, nil }
func (f *fakePlaylistRepo) ListPlaylistsByUser(userID int64) ([]model.Playlist, error) {
	return nil, nil
}
func (f *fakePlaylistRepo) DeletePlaylist(id int64, userID int64) error    { return nil }
func (f *fakePlaylistRepo) AddItem(item *model.PlaylistItem) error         { return nil }
func (f *fakePlaylistRepo) RemoveItem(playlistID, itemID int64) error      { return nil }
func (f *fakePlaylistRepo) PlaylistIDForDream(dreamID int64) (int64, error) {
	return f.playlistByDream[dreamID], nil
}

func feedDreams(ids ...int64) []model.Dream {
	dreams := make([]model.Dream, len(ids))
	for i, id := range ids {
		dreams[i] = model.Dream{ID: id}
	}
	return dreams
}

func TestBuildFeed(t *testing.T) {
	t.Run("dreams outside any playlist stay individual", func(t *testing.T) {
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: map[int64]int64{}}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3))
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for _, e := range entries {
			assert.Equal(t, "dream", e.Type)
			assert.Zero(t, e.PlaylistID)
		}
	})

	t.Run("short run from one playlist stays individual", func(t *testing.T) {
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: map[int64]int64{
			1: 7, 2: 7, 3: 7, 4: 7,
		}}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3, 4))
		require.NoError(t, err)
		require.Len(t, entries, 4)
		for _, e := range entries {
			assert.Equal(t, "dream", e.Type)
			assert.Equal(t, int64(7), e.PlaylistID)
		}
	})

	t.Run("long run collapses into a summary group", func(t *testing.T) {
		byDream := map[int64]int64{}
		for id := int64(1); id <= 6; id++ {
			byDream[id] = 7
		}
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: byDream}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3, 4, 5, 6))
		require.NoError(t, err)

		// Two individual cards, then the summary group.
		require.Len(t, entries, 3)
		assert.Equal(t, "dream", entries[0].Type)
		assert.Equal(t, "dream", entries[1].Type)
		assert.Equal(t, "group", entries[2].Type)
		require.NotNil(t, entries[2].Group)
		assert.Len(t, entries[2].Group.Thumbnails, 4)
		assert.False(t, entries[2].Group.Overflow)
	})

	t.Run("no dream is emitted twice across entries", func(t *testing.T) {
		byDream := map[int64]int64{}
		for id := int64(1); id <= 6; id++ {
			byDream[id] = 7
		}
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: byDream}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3, 4, 5, 6))
		require.NoError(t, err)

		seen := map[int64]int{}
		for _, e := range entries {
			if e.Dream != nil {
				seen[e.Dream.ID]++
			}
			if e.Group != nil {
				for _, d := range e.Group.Thumbnails {
					seen[d.ID]++
				}
			}
		}
		require.Len(t, seen, 6)
		for id, count := range seen {
			assert.Equal(t, 1, count, "dream %d emitted %d times", id, count)
		}
	})

	t.Run("a different playlist breaks the run", func(t *testing.T) {
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: map[int64]int64{
			1: 7, 2: 7, 3: 8, 4: 8,
		}}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3, 4))
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, int64(7), entries[0].PlaylistID)
		assert.Equal(t, int64(7), entries[1].PlaylistID)
		assert.Equal(t, int64(8), entries[2].PlaylistID)
		assert.Equal(t, int64(8), entries[3].PlaylistID)
	})

	t.Run("an unaffiliated dream breaks the run", func(t *testing.T) {
		byDream := map[int64]int64{}
		for id := int64(1); id <= 10; id++ {
			if id != 5 {
				byDream[id] = 7
			}
		}
		h := &APIHandler{playlistRepo: &fakePlaylistRepo{playlistByDream: byDream}}

		entries, err := h.buildFeed(feedDreams(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
		require.NoError(t, err)

		// 1-4 individual (run of four), then dream 5 alone, then 6-10
		// grouped as one individual plus a summary.
		require.Len(t, entries, 7)
		assert.Equal(t, "dream", entries[4].Type)
		assert.Equal(t, int64(5), entries[4].Dream.ID)
		assert.Equal(t, "group", entries[6].Type)
	})
}
