package playlist

import (
	"github.com/e-dream-ai/dreamstream/model"
)

// Thresholds of the feed grouping heuristic. Hard-coded on purpose: they only
// exist to keep a feed visually scannable.
const (
	groupMinSize       = 5 // below this every item is shown individually
	maxIndividual      = 3
	summaryThumbnails  = 4
	overflowAboveCount = 8 // indicator shown iff n > 8
)

// Grouping is the derived view-model for a run of dreams sharing a virtual
// playlist: which items render as standalone cards, which appear as
// thumbnails on the summary card, and whether the summary card carries an
// overflow indicator.
type Grouping struct {
	Individual []model.Dream `json:"individual"`
	Thumbnails []model.Dream `json:"thumbnails"`
	Overflow   bool          `json:"overflow"`
}

// Group buckets an ordered run of dreams belonging to one virtual playlist.
// With four items or fewer everything is shown individually. From five up,
// min(n-4, 3) items are shown individually and the summary card carries the
// four items immediately after them; past eight items the overflow indicator
// marks that the thumbnails are not exhaustive.
func Group(dreams []model.Dream) Grouping {
	n := len(dreams)
	if n < groupMinSize {
		return Grouping{Individual: dreams}
	}

	shown := n - summaryThumbnails
	if shown > maxIndividual {
		shown = maxIndividual
	}

	return Grouping{
		Individual: dreams[:shown],
		Thumbnails: dreams[shown : shown+summaryThumbnails],
		Overflow:   n > overflowAboveCount,
	}
}
