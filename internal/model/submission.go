package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionCompleted SubmissionStatus = "completed"
)

// Submission is one attempt at a challenge. Created with status pending and
// promoted to completed exactly once by the evaluator; never deleted.
// swagger:model Submission
type Submission struct {
	UUIDBase
	UserID      uint             `gorm:"index;not null" json:"userId"`
	ChallengeID uint             `gorm:"index;not null" json:"challengeId"`
	Workflow    datatypes.JSON   `gorm:"type:json" json:"workflow"`
	Status      SubmissionStatus `gorm:"type:enum('pending','completed');default:'pending';index" json:"status"`
	Score       int              `gorm:"default:0" json:"score"`
	// Breakdown and Feedback hold the validated evaluator reply, stored as
	// JSON so the catalog of categories can evolve without a migration.
	Breakdown     datatypes.JSON `gorm:"type:json" json:"breakdown,omitempty"`
	Feedback      datatypes.JSON `gorm:"type:json" json:"feedback,omitempty"`
	PointsAwarded int            `gorm:"default:0" json:"pointsAwarded"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`

	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Challenge Challenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}
