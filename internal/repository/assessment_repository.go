package repository

import (
	"flowlearn_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) FindEnabledQuestions() ([]model.AssessmentQuestion, error) {
	var questions []model.AssessmentQuestion
	err := r.DB.Where("enabled = ?", true).Order("id").Find(&questions).Error
	return questions, err
}

func (r *AssessmentRepository) FindQuestionsByIDs(ids []uint) ([]model.AssessmentQuestion, error) {
	var questions []model.AssessmentQuestion
	err := r.DB.Where("id IN ? AND enabled = ?", ids, true).Find(&questions).Error
	return questions, err
}

func (r *AssessmentRepository) CreateResult(result *model.AssessmentResult) error {
	return r.DB.Create(result).Error
}

func (r *AssessmentRepository) LatestResult(userID uint) (*model.AssessmentResult, error) {
	var result model.AssessmentResult
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").First(&result).Error
	return &result, err
}
