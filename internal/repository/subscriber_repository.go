package repository

import (
	"flowlearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriberRepository struct {
	DB *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{DB: db}
}

func (r *SubscriberRepository) FindByUserID(userID uint) (*model.Subscriber, error) {
	var s model.Subscriber
	err := r.DB.Where("user_id = ?", userID).First(&s).Error
	return &s, err
}

func (r *SubscriberRepository) FindByStripeCustomer(customerID string) (*model.Subscriber, error) {
	var s model.Subscriber
	err := r.DB.Where("stripe_customer_id = ?", customerID).First(&s).Error
	return &s, err
}

func (r *SubscriberRepository) Upsert(s *model.Subscriber) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "stripe_customer_id", "stripe_subscription_id",
			"tier", "subscribed", "current_period_end",
		}),
	}).Create(s).Error
}

// FindExpired returns subscribers still marked paid whose period ended
// before the cutoff; the hourly sweep downgrades them.
func (r *SubscriberRepository) FindExpired(cutoff time.Time) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	err := r.DB.Where("subscribed = ? AND current_period_end IS NOT NULL AND current_period_end < ?",
		true, cutoff).Find(&subs).Error
	return subs, err
}
