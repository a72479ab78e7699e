package repository

import (
	"flowlearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Where("id = ?", id).First(&submission).Error
	return &submission, err
}

func (r *SubmissionRepository) FindByUser(userID uint, page, limit int) ([]model.Submission, int64, error) {
	var submissions []model.Submission
	var total int64

	query := r.DB.Model(&model.Submission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&submissions).Error
	return submissions, total, err
}

// CompleteEvaluation writes the evaluator's result with a guard on the
// pending status: if two evaluations race, the first write wins and the
// second sees zero affected rows.
func (r *SubmissionRepository) CompleteEvaluation(submission *model.Submission) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.Submission{}).
		Where("id = ? AND status = ?", submission.ID, model.SubmissionPending).
		Updates(map[string]interface{}{
			"status":         model.SubmissionCompleted,
			"score":          submission.Score,
			"breakdown":      submission.Breakdown,
			"feedback":       submission.Feedback,
			"points_awarded": submission.PointsAwarded,
			"completed_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountSince counts a user's submissions created at or after the cutoff;
// the weekly free-tier gate runs on this.
func (r *SubmissionRepository) CountSince(userID uint, cutoff time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ? AND status = ?", userID, model.SubmissionCompleted).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) CountAll(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
