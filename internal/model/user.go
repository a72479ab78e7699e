package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string     `gorm:"size:100;not null" json:"name"`
	Email         string     `gorm:"size:100;unique;not null" json:"email"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	Role          UserRole   `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	XP            int        `gorm:"default:0" json:"xp"`
	CurrentStreak int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak int        `gorm:"default:0" json:"longestStreak"`
	LastActiveAt  *time.Time `json:"lastActiveAt"`
	SkillLevel    SkillLevel `gorm:"size:20;default:'beginner'" json:"skillLevel"`
	Language      string     `gorm:"size:10;default:'en'" json:"language"`
	Avatar        string     `gorm:"size:255" json:"avatar"`
	// Mirror of the subscriber row, kept in sync by the stripe webhook so
	// the access gate does not join on every request.
	SubscriptionTier SubscriptionTier `gorm:"size:20;default:'free'" json:"subscriptionTier"`
	Disabled         bool             `gorm:"default:false" json:"disabled"`
	LastLogin        time.Time        `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsPaid() bool {
	return u.SubscriptionTier == TierMonthly || u.SubscriptionTier == TierAnnual
}
