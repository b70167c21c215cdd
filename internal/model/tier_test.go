package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimitsFor(t *testing.T) {
	require.Equal(t, 10, LimitsFor(TierFree).MonthlyLimit)
	require.Equal(t, 100, LimitsFor(TierPremium).MonthlyLimit)
	require.Equal(t, 1000, LimitsFor(TierBusiness).MonthlyLimit)

	// Unknown tiers resolve to free.
	require.Equal(t, 10, LimitsFor(Tier("platinum")).MonthlyLimit)
	require.Equal(t, float64(0), LimitsFor(Tier("")).Price)
}

func TestTierValidAndPaid(t *testing.T) {
	require.True(t, TierFree.Valid())
	require.True(t, TierPremium.Valid())
	require.True(t, TierBusiness.Valid())
	require.False(t, Tier("platinum").Valid())

	require.False(t, TierFree.IsPaid())
	require.True(t, TierPremium.IsPaid())
	require.True(t, TierBusiness.IsPaid())
}

func TestRewardTypeCosts(t *testing.T) {
	require.Equal(t, 30, RewardPremiumMonth.CreditCost())
	require.Equal(t, 50, RewardBusinessMonth.CreditCost())
	require.Equal(t, 0, RewardReferralBonus.CreditCost())

	require.True(t, RewardPremiumMonth.Redeemable())
	require.True(t, RewardBusinessMonth.Redeemable())
	require.False(t, RewardReferralBonus.Redeemable())
}

func TestRewardTypeGrantedTier(t *testing.T) {
	require.Equal(t, TierPremium, RewardPremiumMonth.GrantedTier())
	require.Equal(t, TierBusiness, RewardBusinessMonth.GrantedTier())
	require.Equal(t, TierPremium, RewardReferralBonus.GrantedTier())
	require.Equal(t, TierFree, RewardType("mystery").GrantedTier())
}

func TestRewardActiveAt(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	active := AffiliateReward{Status: RewardStatusActive, ExpiresAt: &later}
	require.True(t, active.ActiveAt(now))
	require.False(t, active.ActiveAt(later))

	lapsed := AffiliateReward{Status: RewardStatusActive, ExpiresAt: &earlier}
	require.False(t, lapsed.ActiveAt(now))

	expired := AffiliateReward{Status: RewardStatusExpired, ExpiresAt: &later}
	require.False(t, expired.ActiveAt(now))

	open := AffiliateReward{Status: RewardStatusActive}
	require.True(t, open.ActiveAt(now))
}

func TestSubscriberPeriodExpired(t *testing.T) {
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscriber{BillingPeriodEnd: end}

	require.False(t, sub.PeriodExpired(end.Add(-time.Second)))
	require.True(t, sub.PeriodExpired(end))
	require.True(t, sub.PeriodExpired(end.Add(time.Second)))
}

func TestCreditsAvailable(t *testing.T) {
	credit := AffiliateCredit{CreditsEarned: 40, CreditsUsed: 30}
	require.Equal(t, 10, credit.CreditsAvailable())
}
