package model

import (
	"time"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierMonthly SubscriptionTier = "monthly"
	TierAnnual  SubscriptionTier = "annual"
)

// Subscriber is the billing-side record, written by the stripe webhook and
// the hourly expiry sweep. The user row mirrors Tier for cheap gating.
type Subscriber struct {
	BaseModel
	UserID               uint             `gorm:"uniqueIndex;not null" json:"userId"`
	Email                string           `gorm:"size:100;index" json:"email"`
	StripeCustomerID     string           `gorm:"size:100;index" json:"-"`
	StripeSubscriptionID string           `gorm:"size:100" json:"-"`
	Tier                 SubscriptionTier `gorm:"size:20;default:'free'" json:"tier"`
	Subscribed           bool             `gorm:"default:false" json:"subscribed"`
	CurrentPeriodEnd     *time.Time       `json:"currentPeriodEnd,omitempty"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
