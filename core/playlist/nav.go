// Package playlist holds the pure view-model logic over playlists and feeds:
// next/previous resolution and virtual-playlist grouping.
package playlist

import (
	"github.com/e-dream-ai/dreamstream/model"
)

// NavigationResult is the derived next/previous pair around the current
// dream. Either side is nil at the playlist boundary or when the current
// dream is not in the playlist.
type NavigationResult struct {
	Next     *model.PlaylistItem
	Previous *model.PlaylistItem
}

// Resolve computes next and previous relative to current within the
// playlist's ordered item list. Matching is by dream identity against
// dream-typed items only; the first occurrence wins when an identity appears
// more than once. The playlist is not mutated.
func Resolve(current *model.Dream, pl *model.Playlist) NavigationResult {
	if current == nil || pl == nil || len(pl.Items) == 0 {
		return NavigationResult{}
	}

	match := -1
	for i, item := range pl.Items {
		if item.ItemType == model.PlaylistItemTypeDream && item.MediaID() == current.ID {
			match = i
			break
		}
	}
	if match < 0 {
		return NavigationResult{}
	}

	var result NavigationResult
	if match > 0 {
		result.Previous = &pl.Items[match-1]
	}
	if match < len(pl.Items)-1 {
		result.Next = &pl.Items[match+1]
	}
	return result
}
