package model

import "time"

// Keyframe is a still-image reference entity associable with playlists.
type Keyframe struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      string    `gorm:"size:36;uniqueIndex" json:"uuid"`
	UserID    int64     `gorm:"index" json:"userId"`
	Name      string    `gorm:"size:255" json:"name"`
	ImagePath string    `gorm:"size:767" json:"imagePath"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
