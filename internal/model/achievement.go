package model

import (
	"time"
)

type AchievementCriteria string

const (
	CriteriaFirstSubmission     AchievementCriteria = "first_submission"
	CriteriaScoreAtLeast        AchievementCriteria = "score_at_least"
	CriteriaPerfectScore        AchievementCriteria = "perfect_score"
	CriteriaChallengesCompleted AchievementCriteria = "challenges_completed"
	CriteriaStreakDays          AchievementCriteria = "streak_days"
	CriteriaTotalXP             AchievementCriteria = "total_xp"
)

// Achievement is a catalog entry seeded at migration time.
type Achievement struct {
	BaseModel
	Code        string              `gorm:"size:50;unique;not null" json:"code"`
	Title       string              `gorm:"size:100;not null" json:"title"`
	Description string              `gorm:"size:255" json:"description"`
	Icon        string              `gorm:"size:255" json:"icon"`
	XPReward    int                 `gorm:"default:0" json:"xpReward"`
	Criteria    AchievementCriteria `gorm:"size:50;not null" json:"criteria"`
	Threshold   int                 `gorm:"default:0" json:"threshold"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records an unlock. The composite unique index makes the
// unlock idempotent under concurrent evaluation callbacks.
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:uq_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:uq_user_achievement;not null" json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`

	Achievement Achievement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"achievement"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
