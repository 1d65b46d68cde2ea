package model

import "time"

// Dream processing status values.
const (
	DreamStatusProcessing = "processing"
	DreamStatusReady      = "ready"
	DreamStatusFailed     = "failed"
)

// Dream is the primary media entity: a short generative video around which
// playlists, votes and feeds are organized.
type Dream struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          string    `gorm:"size:36;uniqueIndex" json:"uuid"`
	UserID        int64     `gorm:"index" json:"userId"`
	Name          string    `gorm:"size:255" json:"name"`
	MediaPath     string    `gorm:"size:767" json:"-"` // Object key in MinIO, not exposed directly
	ThumbnailPath string    `gorm:"size:767" json:"thumbnailPath"`
	Duration      float64   `json:"duration"` // Seconds
	FPS           float64   `json:"fps"`
	Status        string    `gorm:"size:20;default:processing" json:"status"`
	State         int8      `gorm:"default:1" json:"state"` // 0=soft deleted, 1=normal
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DreamVote records a like/dislike on a dream by a user.
type DreamVote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DreamID   int64     `gorm:"index:idx_dream_user,unique" json:"dreamId"`
	UserID    int64     `gorm:"index:idx_dream_user,unique" json:"userId"`
	Value     int       `json:"value"` // 1=like, -1=dislike
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
