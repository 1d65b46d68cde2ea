package server

import (
	"net/http"
	"strconv"

	"github.com/e-dream-ai/dreamstream/core/playlist"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"
)

const defaultFeedLimit = 50

// FeedEntry is one row of the feed: either a standalone dream or a grouped
// run of dreams sharing a virtual playlist.
type FeedEntry struct {
	Type       string       `json:"type"` // "dream" or "group"
	Dream      *model.Dream `json:"dream,omitempty"`
	PlaylistID int64        `json:"playlistId,omitempty"`
	Group      *FeedGroup   `json:"group,omitempty"`
}

// FeedGroup is the summary card of a grouped run. The run's leading items are
// emitted as their own "dream" entries, so the card carries only the
// remainder: thumbnails and the overflow indicator.
type FeedGroup struct {
	Thumbnails []model.Dream `json:"thumbnails"`
	Overflow   bool          `json:"overflow"`
}

// FeedHandler returns recent dreams with consecutive runs from the same
// virtual playlist collapsed into summary groups.
func (h *APIHandler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	dreams, err := h.dreamRepo.ListRecentDreams(limit)
	if err != nil {
		logger.Error("[Feed] failed to list recent dreams", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	entries, err := h.buildFeed(dreams)
	if err != nil {
		logger.Error("[Feed] failed to build feed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// buildFeed walks the dream list in order, collapsing consecutive runs that
// share a playlist into grouped entries. Dreams outside any playlist stay
// individual.
func (h *APIHandler) buildFeed(dreams []model.Dream) ([]FeedEntry, error) {
	entries := make([]FeedEntry, 0, len(dreams))

	var run []model.Dream
	var runPlaylist int64

	flush := func() {
		if len(run) == 0 {
			return
		}
		grouping := playlist.Group(run)
		for i := range grouping.Individual {
			entries = append(entries, FeedEntry{
				Type:       "dream",
				Dream:      &grouping.Individual[i],
				PlaylistID: runPlaylist,
			})
		}
		if len(grouping.Thumbnails) > 0 {
			entries = append(entries, FeedEntry{
				Type:       "group",
				PlaylistID: runPlaylist,
				Group: &FeedGroup{
					Thumbnails: grouping.Thumbnails,
					Overflow:   grouping.Overflow,
				},
			})
		}
		run = nil
		runPlaylist = 0
	}

	for i := range dreams {
		plID, err := h.playlistRepo.PlaylistIDForDream(dreams[i].ID)
		if err != nil {
			return nil, err
		}

		if plID == 0 {
			flush()
			entries = append(entries, FeedEntry{Type: "dream", Dream: &dreams[i]})
			continue
		}

		if plID != runPlaylist {
			flush()
			runPlaylist = plID
		}
		run = append(run, dreams[i])
	}
	flush()

	return entries, nil
}
