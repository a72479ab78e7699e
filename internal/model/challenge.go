package model

import (
	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Multiplier scales a challenge's base points by difficulty tier.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyMedium:
		return 1.5
	case DifficultyHard:
		return 2
	case DifficultyExpert:
		return 3
	default:
		return 1
	}
}

// Challenge is an authored task: a workflow the student must build, with a
// grading rubric the evaluator embeds into its prompt.
// swagger:model Challenge
type Challenge struct {
	BaseModel
	Title            string         `gorm:"size:200;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Difficulty       Difficulty     `gorm:"type:enum('easy','medium','hard','expert');default:'easy'" json:"difficulty"`
	Points           int            `gorm:"not null" json:"points"`
	Requirements     datatypes.JSON `gorm:"type:json" json:"requirements"`
	EvaluationRubric datatypes.JSON `gorm:"type:json" json:"evaluationRubric,omitempty"`
	Hints            datatypes.JSON `gorm:"type:json" json:"hints,omitempty"`
	TimeLimitMinutes int            `gorm:"default:0" json:"timeLimitMinutes"`
	Active           bool           `gorm:"default:true;index" json:"active"`
}

func (Challenge) TableName() string {
	return "challenges"
}
