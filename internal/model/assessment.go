package model

import (
	"gorm.io/datatypes"
)

// AssessmentQuestion is a seeded multiple-choice question used by the
// level-assessment quiz. CorrectIndex is never serialized to students.
type AssessmentQuestion struct {
	BaseModel
	Text         string         `gorm:"type:text;not null" json:"text"`
	Choices      datatypes.JSON `gorm:"type:json;not null" json:"choices"`
	CorrectIndex int            `gorm:"not null" json:"-"`
	Weight       int            `gorm:"default:1" json:"-"`
	LevelTag     SkillLevel     `gorm:"size:20" json:"-"`
	Enabled      bool           `gorm:"default:true" json:"-"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// AssessmentResult stores one quiz run. Retakes append rows; the latest one
// drives the profile's skill level.
type AssessmentResult struct {
	BaseModel
	UserID     uint           `gorm:"index;not null" json:"userId"`
	Score      int            `json:"score"` // percentage 0..100
	Level      SkillLevel     `gorm:"size:20" json:"level"`
	Answers    datatypes.JSON `gorm:"type:json" json:"answers"`
	TotalCount int            `json:"totalCount"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}
