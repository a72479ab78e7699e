package repository

import (
	"errors"
	"flowlearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("threshold").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByCode(code string) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.DB.Where("code = ?", code).First(&achievement).Error
	return &achievement, err
}

func (r *AchievementRepository) FindUnlocked(userID uint) ([]model.UserAchievement, error) {
	var unlocked []model.UserAchievement
	err := r.DB.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&unlocked).Error
	return unlocked, err
}

// Unlock inserts the join row, relying on the composite unique index to
// collapse duplicate unlocks. Returns true when this call did the insert.
func (r *AchievementRepository) Unlock(userID, achievementID uint) (bool, error) {
	ua := model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now(),
	}
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
