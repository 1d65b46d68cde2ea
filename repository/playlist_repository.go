package repository

import (
	"errors"
	"fmt"

	"github.com/e-dream-ai/dreamstream/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines playlist data operations.
type PlaylistRepository interface {
	CreatePlaylist(playlist *model.Playlist) error
	GetPlaylistByID(id int64) (*model.Playlist, error)
	ListPlaylistsByUser(userID int64) ([]model.Playlist, error)
	DeletePlaylist(id int64, userID int64) error
	AddItem(item *model.PlaylistItem) error
	RemoveItem(playlistID, itemID int64) error
	// PlaylistIDForDream returns the id of the most recent playlist
	// containing the dream, 0 if none. Used for virtual-playlist grouping.
	PlaylistIDForDream(dreamID int64) (int64, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM-backed playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) CreatePlaylist(playlist *model.Playlist) error {
	if err := r.db.Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// GetPlaylistByID loads a playlist with its items in position order.
func (r *gormPlaylistRepository) GetPlaylistByID(id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&playlist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist %d: %w", id, err)
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) ListPlaylistsByUser(userID int64) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %d: %w", userID, err)
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) DeletePlaylist(id int64, userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Playlist{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete playlist %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("playlist %d not found or not owned by user %d", id, userID)
		}
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete playlist %d items: %w", id, err)
		}
		return nil
	})
}

// AddItem appends an item, assigning the next position when none is set.
func (r *gormPlaylistRepository) AddItem(item *model.PlaylistItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if item.Position == 0 {
			var maxPos int
			if err := tx.Model(&model.PlaylistItem{}).
				Select("COALESCE(MAX(position), 0)").
				Where("playlist_id = ?", item.PlaylistID).
				Scan(&maxPos).Error; err != nil {
				return fmt.Errorf("failed to find max position: %w", err)
			}
			item.Position = maxPos + 1
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to add playlist item: %w", err)
		}
		return nil
	})
}

func (r *gormPlaylistRepository) RemoveItem(playlistID, itemID int64) error {
	res := r.db.Where("id = ? AND playlist_id = ?", itemID, playlistID).Delete(&model.PlaylistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove playlist item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("playlist item %d not found in playlist %d", itemID, playlistID)
	}
	return nil
}

func (r *gormPlaylistRepository) PlaylistIDForDream(dreamID int64) (int64, error) {
	var item model.PlaylistItem
	err := r.db.Where("item_type = ? AND dream_id = ?", model.PlaylistItemTypeDream, dreamID).
		Order("created_at DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find playlist for dream %d: %w", dreamID, err)
	}
	return item.PlaylistID, nil
}
