package service

import (
	"encoding/json"
	"errors"
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/pkg/logger"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FreeWeeklyChallengeLimit is how many challenges a free user may start per
// ISO week.
const FreeWeeklyChallengeLimit = 1

// weeklyUsageCounter is what the free-tier gate needs from the submission
// store; an interface so the predicate is testable without a database.
type weeklyUsageCounter interface {
	CountSince(userID uint, cutoff time.Time) (int64, error)
}

// subscriberStore and tierMirror narrow the repositories to what the webhook
// and expiry paths touch, so both are testable against fakes.
type subscriberStore interface {
	FindByUserID(userID uint) (*model.Subscriber, error)
	FindByStripeCustomer(customerID string) (*model.Subscriber, error)
	Upsert(s *model.Subscriber) error
	FindExpired(cutoff time.Time) ([]model.Subscriber, error)
}

type tierMirror interface {
	UpdateSubscriptionTier(userID uint, tier model.SubscriptionTier) error
}

type SubscriptionService struct {
	Subscribers subscriberStore
	Users       tierMirror
	Submissions weeklyUsageCounter
	Cfg         config.StripeConfig
}

func NewSubscriptionService(
	subscribers subscriberStore,
	users tierMirror,
	submissions weeklyUsageCounter,
	cfg config.StripeConfig,
) *SubscriptionService {
	stripe.Key = cfg.SecretKey
	return &SubscriptionService{
		Subscribers: subscribers,
		Users:       users,
		Submissions: submissions,
		Cfg:         cfg,
	}
}

// CreateCheckout opens a Stripe Checkout Session for the chosen tier and
// returns its hosted URL.
func (s *SubscriptionService) CreateCheckout(user *model.User, tier model.SubscriptionTier) (string, error) {
	var priceID string
	switch tier {
	case model.TierMonthly:
		priceID = s.Cfg.MonthlyPriceID
	case model.TierAnnual:
		priceID = s.Cfg.AnnualPriceID
	default:
		return "", fmt.Errorf("tier %q is not purchasable", tier)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(user.ID), 10)),
		SuccessURL:        stripe.String(s.Cfg.SuccessURL),
		CancelURL:         stripe.String(s.Cfg.CancelURL),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

type SubscriptionStatus struct {
	Subscribed       bool                   `json:"subscribed"`
	Tier             model.SubscriptionTier `json:"tier"`
	CurrentPeriodEnd *time.Time             `json:"currentPeriodEnd,omitempty"`
}

func (s *SubscriptionService) Status(userID uint) (*SubscriptionStatus, error) {
	sub, err := s.Subscribers.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionStatus{Subscribed: false, Tier: model.TierFree}, nil
		}
		return nil, err
	}
	return &SubscriptionStatus{
		Subscribed:       sub.Subscribed,
		Tier:             sub.Tier,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}

// Minimal projections of the stripe payloads; only the fields the webhook
// acts on, so API-version field moves don't break parsing.
type checkoutSessionPayload struct {
	ClientReferenceID string `json:"client_reference_id"`
	Customer          string `json:"customer"`
	CustomerEmail     string `json:"customer_email"`
	Subscription      string `json:"subscription"`
}

type subscriptionPayload struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// VerifyWebhook checks the Stripe-Signature header against the endpoint
// secret and returns the parsed event.
func (s *SubscriptionService) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, s.Cfg.WebhookSecret)
}

// HandleWebhookEvent applies a verified stripe event to the subscriber row
// and the user's tier mirror. Unknown event types are ignored.
func (s *SubscriptionService) HandleWebhookEvent(event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess checkoutSessionPayload
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("parse checkout session: %w", err)
		}
		return s.applyCheckoutCompleted(&sess)

	case "customer.subscription.updated":
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		return s.applySubscriptionUpdate(&sub, sub.Status == "active" || sub.Status == "trialing")

	case "customer.subscription.deleted":
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		return s.applySubscriptionUpdate(&sub, false)

	default:
		logger.Log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *SubscriptionService) applyCheckoutCompleted(sess *checkoutSessionPayload) error {
	userID64, err := strconv.ParseUint(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return fmt.Errorf("checkout session has no usable client_reference_id: %w", err)
	}
	userID := uint(userID64)

	sub := &model.Subscriber{
		UserID:               userID,
		Email:                sess.CustomerEmail,
		StripeCustomerID:     sess.Customer,
		StripeSubscriptionID: sess.Subscription,
		Subscribed:           true,
		// The tier and period end arrive with the subscription.updated
		// event that follows checkout; default to monthly until then.
		Tier: model.TierMonthly,
	}
	if err := s.Subscribers.Upsert(sub); err != nil {
		return err
	}
	return s.Users.UpdateSubscriptionTier(userID, sub.Tier)
}

func (s *SubscriptionService) applySubscriptionUpdate(payload *subscriptionPayload, active bool) error {
	sub, err := s.Subscribers.FindByStripeCustomer(payload.Customer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted before checkout completed, or an account we never
			// recorded. Nothing to update.
			logger.Log.Warn("stripe event for unknown customer", zap.String("customer", payload.Customer))
			return nil
		}
		return err
	}

	tier := model.TierFree
	if active && len(payload.Items.Data) > 0 {
		switch payload.Items.Data[0].Price.ID {
		case s.Cfg.AnnualPriceID:
			tier = model.TierAnnual
		default:
			tier = model.TierMonthly
		}
		end := time.Unix(payload.Items.Data[0].CurrentPeriodEnd, 0)
		sub.CurrentPeriodEnd = &end
	}

	sub.StripeSubscriptionID = payload.ID
	sub.Subscribed = active
	sub.Tier = tier
	if !active {
		sub.Tier = model.TierFree
	}

	if err := s.Subscribers.Upsert(sub); err != nil {
		return err
	}
	return s.Users.UpdateSubscriptionTier(sub.UserID, sub.Tier)
}

// CanAccessChallenge is the subscription gate: paid users always pass, free
// users pass while under the weekly submission quota.
func (s *SubscriptionService) CanAccessChallenge(user *model.User) (bool, error) {
	if user.IsPaid() {
		return true, nil
	}
	count, err := s.Submissions.CountSince(user.ID, StartOfISOWeek(time.Now().UTC()))
	if err != nil {
		return false, err
	}
	return count < FreeWeeklyChallengeLimit, nil
}

// ExpireLapsed downgrades subscribers whose paid period has ended. Run from
// the hourly background sweep.
func (s *SubscriptionService) ExpireLapsed() error {
	expired, err := s.Subscribers.FindExpired(time.Now())
	if err != nil {
		return err
	}
	for i := range expired {
		sub := &expired[i]
		sub.Subscribed = false
		sub.Tier = model.TierFree
		if err := s.Subscribers.Upsert(sub); err != nil {
			return err
		}
		if err := s.Users.UpdateSubscriptionTier(sub.UserID, model.TierFree); err != nil {
			return err
		}
		logger.Log.Info("subscription lapsed", zap.Uint("user", sub.UserID))
	}
	return nil
}

// StartOfISOWeek truncates t to the preceding Monday 00:00 UTC.
func StartOfISOWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
