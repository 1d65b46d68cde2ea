package model

import "time"

// Playlist item types. A playlist is an ordered mix of dreams and keyframes.
const (
	PlaylistItemTypeDream    = "dream"
	PlaylistItemTypeKeyframe = "keyframe"
)

// Playlist is an ordered collection of dreams and/or keyframes.
type Playlist struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      string         `gorm:"size:36;uniqueIndex" json:"uuid"`
	UserID    int64          `gorm:"index" json:"userId"`
	Name      string         `gorm:"size:255" json:"name"`
	Items     []PlaylistItem `gorm:"foreignKey:PlaylistID" json:"items,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PlaylistItem is one entry of a playlist, ordered by Position.
type PlaylistItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlaylistID int64     `gorm:"index" json:"playlistId"`
	ItemType   string    `gorm:"size:20" json:"type"` // dream or keyframe
	DreamID    int64     `json:"dreamId,omitempty"`
	KeyframeID int64     `json:"keyframeId,omitempty"`
	Position   int       `json:"position"`
	AddedBy    int64     `json:"addedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MediaID returns the identity of the referenced media. Dreams and keyframes
// live in separate id spaces, so the item type disambiguates.
func (i PlaylistItem) MediaID() int64 {
	if i.ItemType == PlaylistItemTypeKeyframe {
		return i.KeyframeID
	}
	return i.DreamID
}
