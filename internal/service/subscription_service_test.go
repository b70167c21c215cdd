package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"agendly/bookhub/internal/model"
)

func newTestSubscriptionService(subs *fakeSubscriberRepo, affs *fakeAffiliateRepo, now time.Time) *subscriptionService {
	svc := NewSubscriptionService(subs, affs).(*subscriptionService)
	svc.now = func() time.Time { return now }
	return svc
}

func seedSubscriber(repo *fakeSubscriberRepo, userID uuid.UUID, tier model.Tier, used int, now time.Time) *model.Subscriber {
	start, end := NewPeriodStartingAt(now)
	sub := &model.Subscriber{
		UserID:                  userID,
		Tier:                    tier,
		MonthlyAppointmentsUsed: used,
		MonthlyLimit:            model.LimitsFor(tier).MonthlyLimit,
		BillingPeriodStart:      start,
		BillingPeriodEnd:        end,
	}
	_ = repo.Create(context.Background(), sub)
	return sub
}

func TestGetLimitsCreatesSubscriberOnFirstContact(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()

	limits, err := svc.GetLimits(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, limits.CanCreateAppointment)
	require.Equal(t, 0, limits.AppointmentsUsed)
	require.Equal(t, 10, limits.AppointmentsLimit)
	require.Equal(t, model.TierFree, limits.Tier)

	created, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), created.BillingPeriodStart)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), created.BillingPeriodEnd)
}

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 9, now)

	ok, err := svc.IncrementUsage(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IncrementUsage(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, ok)

	sub, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 10, sub.MonthlyAppointmentsUsed)

	limits, err := svc.GetLimits(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, limits.CanCreateAppointment)
}

func TestIncrementUsageConcurrentNeverOvershoots(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 3, now)

	const callers = 50
	var wg sync.WaitGroup
	granted := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.IncrementUsage(context.Background(), userID)
			require.NoError(t, err)
			if ok {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	require.Len(t, granted, 7)
	sub, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 10, sub.MonthlyAppointmentsUsed)
}

func TestReleaseUsageFloorsAtZero(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 1, now)

	require.NoError(t, svc.ReleaseUsage(context.Background(), userID))
	require.NoError(t, svc.ReleaseUsage(context.Background(), userID))

	sub, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 0, sub.MonthlyAppointmentsUsed)
}

func TestLazyRolloverResetsCounter(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()

	stale := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	seedSubscriber(subs, userID, model.TierPremium, 42, stale)

	limits, err := svc.GetLimits(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 0, limits.AppointmentsUsed)
	require.True(t, limits.CanCreateAppointment)

	sub, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sub.BillingPeriodStart)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), sub.BillingPeriodEnd)
	require.Equal(t, model.TierPremium, sub.Tier)

	// A second call sees a current period and changes nothing.
	_, err = svc.GetLimits(context.Background(), userID)
	require.NoError(t, err)
	again, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, sub.BillingPeriodEnd, again.BillingPeriodEnd)
}

func TestEffectiveTierRewardOverride(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	affs := newFakeAffiliateRepo()
	svc := newTestSubscriptionService(subs, affs, now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 0, now)

	expires := now.AddDate(0, 1, 0)
	require.NoError(t, affs.CreateReward(context.Background(), &model.AffiliateReward{
		UserID:     userID,
		RewardType: model.RewardPremiumMonth,
		Status:     model.RewardStatusActive,
		AppliedAt:  now,
		ExpiresAt:  &expires,
	}))

	tier, err := svc.EffectiveTier(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, model.TierPremium, tier)

	limits, err := svc.GetLimits(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 100, limits.AppointmentsLimit)
}

func TestEffectiveTierIgnoresExpiredReward(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	affs := newFakeAffiliateRepo()
	svc := newTestSubscriptionService(subs, affs, now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 0, now)

	lapsed := now.Add(-time.Hour)
	require.NoError(t, affs.CreateReward(context.Background(), &model.AffiliateReward{
		UserID:     userID,
		RewardType: model.RewardBusinessMonth,
		Status:     model.RewardStatusActive,
		AppliedAt:  now.AddDate(0, -1, 0),
		ExpiresAt:  &lapsed,
	}))

	tier, err := svc.EffectiveTier(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, model.TierFree, tier)
}

func TestEffectiveTierKeepsHigherBaseTier(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	affs := newFakeAffiliateRepo()
	svc := newTestSubscriptionService(subs, affs, now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierBusiness, 0, now)

	expires := now.AddDate(0, 1, 0)
	require.NoError(t, affs.CreateReward(context.Background(), &model.AffiliateReward{
		UserID:     userID,
		RewardType: model.RewardPremiumMonth,
		Status:     model.RewardStatusActive,
		AppliedAt:  now,
		ExpiresAt:  &expires,
	}))

	// The premium grant must not downgrade a business subscriber.
	tier, err := svc.EffectiveTier(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, model.TierBusiness, tier)
}

func TestApplyBillingUpdate(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()

	subEnd := now.AddDate(0, 1, 0)
	err := svc.ApplyBillingUpdate(context.Background(), BillingUpdate{
		UserID:          userID,
		Tier:            model.TierPremium,
		Subscribed:      true,
		SubscriptionEnd: &subEnd,
	})
	require.NoError(t, err)

	sub, err := subs.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, model.TierPremium, sub.Tier)
	require.True(t, sub.Subscribed)
	require.Equal(t, 100, sub.MonthlyLimit)
}

func TestApplyBillingUpdateRejectsUnknownTier(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(newFakeSubscriberRepo(), newFakeAffiliateRepo(), now)

	err := svc.ApplyBillingUpdate(context.Background(), BillingUpdate{
		UserID: uuid.New(),
		Tier:   model.Tier("platinum"),
	})
	require.ErrorIs(t, err, ErrInvalidTier)
}

func TestSweepExpiredRollsOverAndExpiresRewards(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	affs := newFakeAffiliateRepo()
	svc := newTestSubscriptionService(subs, affs, now)

	staleUser := uuid.New()
	currentUser := uuid.New()
	seedSubscriber(subs, staleUser, model.TierFree, 5, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	seedSubscriber(subs, currentUser, model.TierFree, 5, now)

	lapsed := now.Add(-time.Minute)
	require.NoError(t, affs.CreateReward(context.Background(), &model.AffiliateReward{
		UserID:     staleUser,
		RewardType: model.RewardPremiumMonth,
		Status:     model.RewardStatusActive,
		AppliedAt:  now.AddDate(0, -1, 0),
		ExpiresAt:  &lapsed,
	}))

	rolled, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), rolled)

	stale, err := subs.GetByUserID(context.Background(), staleUser)
	require.NoError(t, err)
	require.Equal(t, 0, stale.MonthlyAppointmentsUsed)

	current, err := subs.GetByUserID(context.Background(), currentUser)
	require.NoError(t, err)
	require.Equal(t, 5, current.MonthlyAppointmentsUsed)

	rewards, err := affs.ListActiveRewards(context.Background(), staleUser, now)
	require.NoError(t, err)
	require.Empty(t, rewards)
}

func TestIncrementUsageFailsClosedOnStorageError(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	subs := newFakeSubscriberRepo()
	svc := newTestSubscriptionService(subs, newFakeAffiliateRepo(), now)
	userID := uuid.New()
	seedSubscriber(subs, userID, model.TierFree, 0, now)

	subs.incrementErr = errors.New("connection reset")
	ok, err := svc.IncrementUsage(context.Background(), userID)
	require.Error(t, err)
	require.False(t, ok)
}
