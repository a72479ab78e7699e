package service

import (
	"encoding/json"
	"testing"
	"time"

	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

type fakeUsageCounter struct {
	count  int64
	err    error
	cutoff time.Time
}

func (f *fakeUsageCounter) CountSince(userID uint, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.count, f.err
}

func TestCanAccessChallenge(t *testing.T) {
	t.Run("paid user always passes", func(t *testing.T) {
		counter := &fakeUsageCounter{count: 50}
		svc := &SubscriptionService{Submissions: counter}

		ok, err := svc.CanAccessChallenge(&model.User{SubscriptionTier: model.TierMonthly})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, counter.cutoff.IsZero(), "paid path must not hit the usage counter")
	})

	t.Run("free user under quota passes", func(t *testing.T) {
		svc := &SubscriptionService{Submissions: &fakeUsageCounter{count: 0}}

		ok, err := svc.CanAccessChallenge(&model.User{SubscriptionTier: model.TierFree})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("free user at quota is blocked", func(t *testing.T) {
		svc := &SubscriptionService{Submissions: &fakeUsageCounter{count: FreeWeeklyChallengeLimit}}

		ok, err := svc.CanAccessChallenge(&model.User{SubscriptionTier: model.TierFree})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("quota window starts at the ISO week boundary", func(t *testing.T) {
		counter := &fakeUsageCounter{}
		svc := &SubscriptionService{Submissions: counter}

		_, err := svc.CanAccessChallenge(&model.User{SubscriptionTier: model.TierFree})
		require.NoError(t, err)
		assert.Equal(t, StartOfISOWeek(time.Now().UTC()), counter.cutoff)
	})
}

type fakeSubscriberStore struct {
	byCustomer map[string]*model.Subscriber
	upserted   []*model.Subscriber
}

func (f *fakeSubscriberStore) FindByUserID(userID uint) (*model.Subscriber, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriberStore) FindByStripeCustomer(customerID string) (*model.Subscriber, error) {
	sub, ok := f.byCustomer[customerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeSubscriberStore) Upsert(s *model.Subscriber) error {
	f.upserted = append(f.upserted, s)
	return nil
}

func (f *fakeSubscriberStore) FindExpired(cutoff time.Time) ([]model.Subscriber, error) {
	return nil, nil
}

type fakeTierMirror struct {
	tiers map[uint]model.SubscriptionTier
}

func (f *fakeTierMirror) UpdateSubscriptionTier(userID uint, tier model.SubscriptionTier) error {
	if f.tiers == nil {
		f.tiers = map[uint]model.SubscriptionTier{}
	}
	f.tiers[userID] = tier
	return nil
}

func stripeEvent(t *testing.T, eventType string, payload interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return stripe.Event{Type: stripe.EventType(eventType), Data: &stripe.EventData{Raw: raw}}
}

func newWebhookFixture() (*SubscriptionService, *fakeSubscriberStore, *fakeTierMirror) {
	store := &fakeSubscriberStore{byCustomer: map[string]*model.Subscriber{}}
	mirror := &fakeTierMirror{}
	svc := &SubscriptionService{
		Subscribers: store,
		Users:       mirror,
		Cfg: config.StripeConfig{
			MonthlyPriceID: "price_monthly",
			AnnualPriceID:  "price_annual",
		},
	}
	return svc, store, mirror
}

func subscriptionEventPayload(priceID string, periodEnd time.Time, status string) map[string]interface{} {
	return map[string]interface{}{
		"id":       "sub_2",
		"customer": "cus_1",
		"status":   status,
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"current_period_end": periodEnd.Unix(),
					"price":              map[string]string{"id": priceID},
				},
			},
		},
	}
}

func TestHandleWebhookEvent(t *testing.T) {
	t.Run("checkout completion subscribes the user", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()

		err := svc.HandleWebhookEvent(stripeEvent(t, "checkout.session.completed", map[string]string{
			"client_reference_id": "42",
			"customer":            "cus_1",
			"customer_email":      "ada@example.com",
			"subscription":        "sub_1",
		}))
		require.NoError(t, err)

		require.Len(t, store.upserted, 1)
		sub := store.upserted[0]
		assert.Equal(t, uint(42), sub.UserID)
		assert.Equal(t, "cus_1", sub.StripeCustomerID)
		assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
		assert.True(t, sub.Subscribed)
		assert.Equal(t, model.TierMonthly, sub.Tier)
		assert.Equal(t, model.TierMonthly, mirror.tiers[42])
	})

	t.Run("checkout without a usable reference id errors", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()

		err := svc.HandleWebhookEvent(stripeEvent(t, "checkout.session.completed", map[string]string{
			"client_reference_id": "",
			"customer":            "cus_1",
		}))
		require.Error(t, err)
		assert.Empty(t, store.upserted)
		assert.Empty(t, mirror.tiers)
	})

	t.Run("subscription update sets the annual tier and period end", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()
		store.byCustomer["cus_1"] = &model.Subscriber{UserID: 42, Tier: model.TierMonthly, Subscribed: true}
		periodEnd := time.Date(2027, 8, 31, 12, 0, 0, 0, time.UTC)

		err := svc.HandleWebhookEvent(stripeEvent(t, "customer.subscription.updated",
			subscriptionEventPayload("price_annual", periodEnd, "active")))
		require.NoError(t, err)

		require.Len(t, store.upserted, 1)
		sub := store.upserted[0]
		assert.Equal(t, model.TierAnnual, sub.Tier)
		assert.True(t, sub.Subscribed)
		require.NotNil(t, sub.CurrentPeriodEnd)
		assert.Equal(t, periodEnd.Unix(), sub.CurrentPeriodEnd.Unix())
		assert.Equal(t, model.TierAnnual, mirror.tiers[42])
	})

	t.Run("inactive status downgrades to free", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()
		store.byCustomer["cus_1"] = &model.Subscriber{UserID: 42, Tier: model.TierAnnual, Subscribed: true}

		err := svc.HandleWebhookEvent(stripeEvent(t, "customer.subscription.updated",
			subscriptionEventPayload("price_annual", time.Now(), "past_due")))
		require.NoError(t, err)

		require.Len(t, store.upserted, 1)
		assert.Equal(t, model.TierFree, store.upserted[0].Tier)
		assert.False(t, store.upserted[0].Subscribed)
		assert.Equal(t, model.TierFree, mirror.tiers[42])
	})

	t.Run("subscription deletion downgrades to free", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()
		store.byCustomer["cus_1"] = &model.Subscriber{UserID: 42, Tier: model.TierMonthly, Subscribed: true}

		err := svc.HandleWebhookEvent(stripeEvent(t, "customer.subscription.deleted",
			subscriptionEventPayload("price_monthly", time.Now(), "canceled")))
		require.NoError(t, err)

		require.Len(t, store.upserted, 1)
		assert.Equal(t, model.TierFree, store.upserted[0].Tier)
		assert.False(t, store.upserted[0].Subscribed)
		assert.Equal(t, model.TierFree, mirror.tiers[42])
	})

	t.Run("unknown customer is a no-op", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()

		err := svc.HandleWebhookEvent(stripeEvent(t, "customer.subscription.updated",
			subscriptionEventPayload("price_annual", time.Now(), "active")))
		require.NoError(t, err)
		assert.Empty(t, store.upserted)
		assert.Empty(t, mirror.tiers)
	})

	t.Run("unhandled event types are ignored", func(t *testing.T) {
		svc, store, mirror := newWebhookFixture()

		err := svc.HandleWebhookEvent(stripeEvent(t, "invoice.paid", map[string]string{}))
		require.NoError(t, err)
		assert.Empty(t, store.upserted)
		assert.Empty(t, mirror.tiers)
	})
}

func TestStartOfISOWeek(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"wednesday truncates to monday",
			time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday is its own boundary",
			time.Date(2026, 8, 24, 23, 59, 59, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the preceding monday",
			time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StartOfISOWeek(tc.in))
		})
	}
}
