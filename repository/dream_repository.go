package repository

import (
	"errors"
	"fmt"

	"github.com/e-dream-ai/dreamstream/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DreamRepository defines dream data operations.
type DreamRepository interface {
	CreateDream(dream *model.Dream) error
	GetDreamByID(id int64) (*model.Dream, error)
	GetDreamByUUID(uuid string) (*model.Dream, error)
	UpdateDreamStatus(id int64, status string) error
	ListRecentDreams(limit int) ([]model.Dream, error)
	UpsertVote(vote *model.DreamVote) error
	VoteTotal(dreamID int64) (int64, error)
}

type gormDreamRepository struct {
	db *gorm.DB
}

// NewGormDreamRepository creates a GORM-backed dream repository.
func NewGormDreamRepository(db *gorm.DB) DreamRepository {
	return &gormDreamRepository{db: db}
}

func (r *gormDreamRepository) CreateDream(dream *model.Dream) error {
	if err := r.db.Create(dream).Error; err != nil {
		return fmt.Errorf("failed to create dream: %w", err)
	}
	return nil
}

func (r *gormDreamRepository) GetDreamByID(id int64) (*model.Dream, error) {
	var dream model.Dream
	err := r.db.Where("id = ? AND state = 1", id).First(&dream).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dream %d: %w", id, err)
	}
	return &dream, nil
}

func (r *gormDreamRepository) GetDreamByUUID(uuid string) (*model.Dream, error) {
	var dream model.Dream
	err := r.db.Where("uuid = ? AND state = 1", uuid).First(&dream).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dream %s: %w", uuid, err)
	}
	return &dream, nil
}

func (r *gormDreamRepository) UpdateDreamStatus(id int64, status string) error {
	if err := r.db.Model(&model.Dream{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update dream %d status: %w", id, err)
	}
	return nil
}

func (r *gormDreamRepository) ListRecentDreams(limit int) ([]model.Dream, error) {
	var dreams []model.Dream
	err := r.db.Where("state = 1 AND status = ?", model.DreamStatusReady).
		Order("created_at DESC").
		Limit(limit).
		Find(&dreams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent dreams: %w", err)
	}
	return dreams, nil
}

// UpsertVote records a vote, replacing the user's previous vote on the same
// dream if any.
func (r *gormDreamRepository) UpsertVote(vote *model.DreamVote) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dream_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *gormDreamRepository) VoteTotal(dreamID int64) (int64, error) {
	var total int64
	err := r.db.Model(&model.DreamVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("dream_id = ?", dreamID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum votes for dream %d: %w", dreamID, err)
	}
	return total, nil
}
