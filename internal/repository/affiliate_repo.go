package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
)

// ReferralCounts aggregates a referrer's record totals.
type ReferralCounts struct {
	Total     int
	Pending   int
	Completed int
}

type AffiliateRepository interface {
	GetCodeByUserID(ctx context.Context, userID uuid.UUID) (*model.ReferralCode, error)
	GetCodeByCode(ctx context.Context, code string) (*model.ReferralCode, error)
	CreateCode(ctx context.Context, code *model.ReferralCode) error

	CreateReferral(ctx context.Context, ref *model.Referral) error
	GetReferralByID(ctx context.Context, id uuid.UUID) (*model.Referral, error)
	GetReferralByReferredUser(ctx context.Context, referredUserID uuid.UUID) (*model.Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.Referral, error)
	ListReferrals(ctx context.Context) ([]model.Referral, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Referral, error)
	CountReferralsByReferrer(ctx context.Context, referrerUserID uuid.UUID) (ReferralCounts, error)

	// EnsureCredits creates a zero ledger row if the user has none.
	EnsureCredits(ctx context.Context, userID uuid.UUID) error
	GetCredits(ctx context.Context, userID uuid.UUID) (*model.AffiliateCredit, error)

	// CompleteReferral flips pending -> completed and credits the referrer in
	// one transaction. The status check makes repeated calls no-ops; returns
	// whether this call performed the transition.
	CompleteReferral(ctx context.Context, referralID uuid.UUID, creditsAward int, completedAt time.Time) (bool, error)

	// RedeemCredits conditionally debits the ledger and inserts the reward in
	// one transaction. Returns false without mutation when the balance is short.
	RedeemCredits(ctx context.Context, userID uuid.UUID, reward *model.AffiliateReward) (bool, error)

	CreateReward(ctx context.Context, reward *model.AffiliateReward) error
	ListActiveRewards(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.AffiliateReward, error)
	ExpireLapsedRewards(ctx context.Context, now time.Time) (int64, error)
}
