package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
	"agendly/bookhub/pkg/crypto"
)

const (
	referralBaseAward     = 10
	referralPaidBonus     = 20
	codeGenerationRetries = 5
)

// AffiliateStats is the dashboard view of a user's referral standing.
type AffiliateStats struct {
	ReferralCode       string `json:"referral_code"`
	TotalReferrals     int    `json:"total_referrals"`
	PendingReferrals   int    `json:"pending_referrals"`
	CompletedReferrals int    `json:"completed_referrals"`
	TotalCreditsEarned int    `json:"total_credits_earned"`
	CreditsUsed        int    `json:"credits_used"`
	CreditsAvailable   int    `json:"credits_available"`
	ActiveRewards      int    `json:"active_rewards"`
}

// CompletionPolicy decides when a pending referral becomes eligible for
// completion. The crediting itself stays in the service; only the business
// rule of "when" is pluggable.
type CompletionPolicy interface {
	Eligible(referral *model.Referral, referredUser *model.User, now time.Time) bool
}

// VerifiedAgePolicy requires the referred user to have verified their phone
// and the referral to be at least MinAge old.
type VerifiedAgePolicy struct {
	MinAge time.Duration
}

func (p VerifiedAgePolicy) Eligible(referral *model.Referral, referredUser *model.User, now time.Time) bool {
	if referredUser == nil || !referredUser.PhoneVerified {
		return false
	}
	return now.Sub(referral.CreatedAt) >= p.MinAge
}

type AffiliateService interface {
	// GetOrCreateReferralCode returns the user's share code, generating one on
	// first call. Idempotent.
	GetOrCreateReferralCode(ctx context.Context, userID uuid.UUID) (string, error)

	// ProcessReferralSignup records that referredUserID signed up with a code
	// and grants the referred user the unconditional signup bonus. The source
	// IP is recorded for review, nothing more.
	ProcessReferralSignup(ctx context.Context, referredUserID uuid.UUID, code string, sourceIP string) (*model.Referral, error)

	// CompleteReferral transitions pending -> completed and credits the
	// referrer. Returns the credits granted; 0 when the referral was already
	// completed.
	CompleteReferral(ctx context.Context, referralID uuid.UUID) (int, error)

	// RedeemCredits buys a reward with credits. Returns false without mutation
	// when the balance is insufficient.
	RedeemCredits(ctx context.Context, userID uuid.UUID, rewardType model.RewardType) (bool, error)

	GetStats(ctx context.Context, userID uuid.UUID) (*AffiliateStats, error)
	ListActiveRewards(ctx context.Context, userID uuid.UUID) ([]model.AffiliateReward, error)
	ListReferrals(ctx context.Context) ([]model.Referral, error)

	// CompleteEligible sweeps pending referrals through the completion policy.
	// Returns how many were completed.
	CompleteEligible(ctx context.Context) (int, error)
}

type affiliateService struct {
	affiliateRepo  repository.AffiliateRepository
	subscriberRepo repository.SubscriberRepository
	userRepo       repository.UserRepository
	policy         CompletionPolicy
	now            func() time.Time
}

func NewAffiliateService(
	affiliateRepo repository.AffiliateRepository,
	subscriberRepo repository.SubscriberRepository,
	userRepo repository.UserRepository,
	policy CompletionPolicy,
) AffiliateService {
	return &affiliateService{
		affiliateRepo:  affiliateRepo,
		subscriberRepo: subscriberRepo,
		userRepo:       userRepo,
		policy:         policy,
		now:            time.Now,
	}
}

func (s *affiliateService) GetOrCreateReferralCode(ctx context.Context, userID uuid.UUID) (string, error) {
	existing, err := s.affiliateRepo.GetCodeByUserID(ctx, userID)
	if err == nil {
		return existing.ReferralCode, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	for attempt := 0; attempt < codeGenerationRetries; attempt++ {
		code, err := crypto.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		createErr := s.affiliateRepo.CreateCode(ctx, &model.ReferralCode{
			UserID:       userID,
			ReferralCode: code,
		})
		if createErr == nil {
			return code, nil
		}
		if isUniqueViolation(createErr) {
			// Either the code collided or a concurrent call created the
			// user's row; re-read before retrying.
			if existing, err := s.affiliateRepo.GetCodeByUserID(ctx, userID); err == nil {
				return existing.ReferralCode, nil
			}
			continue
		}
		return "", createErr
	}
	return "", fmt.Errorf("generate referral code: retries exhausted")
}

func (s *affiliateService) ProcessReferralSignup(ctx context.Context, referredUserID uuid.UUID, code string, sourceIP string) (*model.Referral, error) {
	owner, err := s.affiliateRepo.GetCodeByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReferralCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	if owner.UserID == referredUserID {
		return nil, ErrSelfReferral
	}

	if _, err := s.affiliateRepo.GetReferralByReferredUser(ctx, referredUserID); err == nil {
		return nil, ErrDuplicateReferral
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	referral := &model.Referral{
		ReferrerUserID: owner.UserID,
		ReferredUserID: referredUserID,
		ReferralCode:   owner.ReferralCode,
		Status:         model.ReferralStatusPending,
		SourceIP:       sourceIP,
	}
	if err := s.affiliateRepo.CreateReferral(ctx, referral); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReferral
		}
		return nil, err
	}

	// The referred side's bonus is unconditional; the referrer's credit waits
	// for completion.
	now := s.now()
	expires := grantExpiry(now)
	bonus := &model.AffiliateReward{
		UserID:      referredUserID,
		RewardType:  model.RewardReferralBonus,
		CreditsCost: 0,
		Status:      model.RewardStatusActive,
		AppliedAt:   now,
		ExpiresAt:   &expires,
	}
	if err := s.affiliateRepo.CreateReward(ctx, bonus); err != nil {
		return nil, fmt.Errorf("grant signup bonus: %w", err)
	}

	return referral, nil
}

func (s *affiliateService) CompleteReferral(ctx context.Context, referralID uuid.UUID) (int, error) {
	referral, err := s.affiliateRepo.GetReferralByID(ctx, referralID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrReferralNotFound
	}
	if err != nil {
		return 0, err
	}
	if referral.Status != model.ReferralStatusPending {
		return 0, nil
	}

	award := referralBaseAward
	if paid, err := s.referredUserIsPaid(ctx, referral.ReferredUserID); err != nil {
		return 0, err
	} else if paid {
		award += referralPaidBonus
	}

	transitioned, err := s.affiliateRepo.CompleteReferral(ctx, referralID, award, s.now())
	if err != nil {
		return 0, err
	}
	if !transitioned {
		// A concurrent call completed it first.
		return 0, nil
	}
	return award, nil
}

func (s *affiliateService) RedeemCredits(ctx context.Context, userID uuid.UUID, rewardType model.RewardType) (bool, error) {
	if !rewardType.Redeemable() {
		return false, fmt.Errorf("%w: %q", ErrInvalidRewardType, rewardType)
	}

	if err := s.affiliateRepo.EnsureCredits(ctx, userID); err != nil {
		return false, err
	}

	now := s.now()
	expires := grantExpiry(now)
	reward := &model.AffiliateReward{
		UserID:      userID,
		RewardType:  rewardType,
		CreditsCost: rewardType.CreditCost(),
		Status:      model.RewardStatusActive,
		AppliedAt:   now,
		ExpiresAt:   &expires,
	}
	return s.affiliateRepo.RedeemCredits(ctx, userID, reward)
}

func (s *affiliateService) GetStats(ctx context.Context, userID uuid.UUID) (*AffiliateStats, error) {
	code, err := s.GetOrCreateReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.affiliateRepo.CountReferralsByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.affiliateRepo.EnsureCredits(ctx, userID); err != nil {
		return nil, err
	}
	credits, err := s.affiliateRepo.GetCredits(ctx, userID)
	if err != nil {
		return nil, err
	}

	rewards, err := s.affiliateRepo.ListActiveRewards(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	return &AffiliateStats{
		ReferralCode:       code,
		TotalReferrals:     counts.Total,
		PendingReferrals:   counts.Pending,
		CompletedReferrals: counts.Completed,
		TotalCreditsEarned: credits.CreditsEarned,
		CreditsUsed:        credits.CreditsUsed,
		CreditsAvailable:   credits.CreditsAvailable(),
		ActiveRewards:      len(rewards),
	}, nil
}

func (s *affiliateService) ListActiveRewards(ctx context.Context, userID uuid.UUID) ([]model.AffiliateReward, error) {
	return s.affiliateRepo.ListActiveRewards(ctx, userID, s.now())
}

func (s *affiliateService) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	return s.affiliateRepo.ListReferrals(ctx)
}

func (s *affiliateService) CompleteEligible(ctx context.Context) (int, error) {
	now := s.now()
	pending, err := s.affiliateRepo.ListPendingCreatedBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range pending {
		referral := &pending[i]
		user, err := s.userRepo.GetByID(ctx, referral.ReferredUserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return completed, err
		}
		if !s.policy.Eligible(referral, user, now) {
			continue
		}
		if _, err := s.CompleteReferral(ctx, referral.ID); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (s *affiliateService) referredUserIsPaid(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.subscriberRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.Subscribed && sub.Tier.IsPaid(), nil
}

// grantExpiry is one calendar month after the grant, matching billing periods.
func grantExpiry(now time.Time) time.Time {
	return now.AddDate(0, 1, 0)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
