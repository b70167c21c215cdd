package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
)

// SubscriptionLimits mirrors what the dashboard shows: the current counter
// against the effective limit.
type SubscriptionLimits struct {
	CanCreateAppointment bool       `json:"can_create_appointment"`
	AppointmentsUsed     int        `json:"appointments_used"`
	AppointmentsLimit    int        `json:"appointments_limit"`
	Tier                 model.Tier `json:"subscription_tier"`
}

// BillingUpdate is the payload the payment provider webhook delivers.
type BillingUpdate struct {
	UserID          uuid.UUID
	Tier            model.Tier
	Subscribed      bool
	SubscriptionEnd *time.Time
}

type SubscriptionService interface {
	// GetLimits reports whether the user may create another appointment this
	// period. Creates the subscriber record (free tier) on first contact and
	// rolls over stale periods before answering.
	GetLimits(ctx context.Context, userID uuid.UUID) (*SubscriptionLimits, error)

	// IncrementUsage atomically takes one appointment slot. Returns false,
	// without mutating, when the effective limit is already reached. Storage
	// errors mean "cannot create": callers must fail closed.
	IncrementUsage(ctx context.Context, userID uuid.UUID) (bool, error)

	// ReleaseUsage gives a slot back after a cancelled domain write.
	ReleaseUsage(ctx context.Context, userID uuid.UUID) error

	GetSubscriber(ctx context.Context, userID uuid.UUID) (*model.Subscriber, error)

	// EffectiveTier resolves the tier limits apply under: the base tier from
	// billing, overridden by an active reward grant when that grants more.
	EffectiveTier(ctx context.Context, userID uuid.UUID) (model.Tier, error)

	// ApplyBillingUpdate is called by the payment webhook, the only writer of
	// the base tier.
	ApplyBillingUpdate(ctx context.Context, update BillingUpdate) error

	// SweepExpired batch-rolls-over lapsed periods and expires lapsed reward
	// grants. Safe to run concurrently with lazy per-user rollovers.
	SweepExpired(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	subscriberRepo repository.SubscriberRepository
	affiliateRepo  repository.AffiliateRepository
	now            func() time.Time
}

func NewSubscriptionService(
	subscriberRepo repository.SubscriberRepository,
	affiliateRepo repository.AffiliateRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriberRepo: subscriberRepo,
		affiliateRepo:  affiliateRepo,
		now:            time.Now,
	}
}

func (s *subscriptionService) GetLimits(ctx context.Context, userID uuid.UUID) (*SubscriptionLimits, error) {
	sub, err := s.currentSubscriber(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier, err := s.effectiveTierFor(ctx, sub)
	if err != nil {
		return nil, err
	}
	limit := model.LimitsFor(tier).MonthlyLimit

	return &SubscriptionLimits{
		CanCreateAppointment: sub.MonthlyAppointmentsUsed < limit,
		AppointmentsUsed:     sub.MonthlyAppointmentsUsed,
		AppointmentsLimit:    limit,
		Tier:                 tier,
	}, nil
}

func (s *subscriptionService) IncrementUsage(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.currentSubscriber(ctx, userID)
	if err != nil {
		return false, err
	}

	tier, err := s.effectiveTierFor(ctx, sub)
	if err != nil {
		return false, err
	}
	limit := model.LimitsFor(tier).MonthlyLimit

	// The conditional update is the authority: the limit check and the
	// increment are one statement, so concurrent calls cannot overshoot.
	return s.subscriberRepo.IncrementUsage(ctx, userID, limit)
}

func (s *subscriptionService) ReleaseUsage(ctx context.Context, userID uuid.UUID) error {
	return s.subscriberRepo.DecrementUsage(ctx, userID)
}

func (s *subscriptionService) GetSubscriber(ctx context.Context, userID uuid.UUID) (*model.Subscriber, error) {
	return s.currentSubscriber(ctx, userID)
}

func (s *subscriptionService) EffectiveTier(ctx context.Context, userID uuid.UUID) (model.Tier, error) {
	sub, err := s.currentSubscriber(ctx, userID)
	if err != nil {
		return model.TierFree, err
	}
	return s.effectiveTierFor(ctx, sub)
}

func (s *subscriptionService) ApplyBillingUpdate(ctx context.Context, update BillingUpdate) error {
	if !update.Tier.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, update.Tier)
	}
	if _, err := s.currentSubscriber(ctx, update.UserID); err != nil {
		return err
	}
	return s.subscriberRepo.ApplyBillingUpdate(ctx, update.UserID, update.Tier, update.Subscribed, update.SubscriptionEnd)
}

func (s *subscriptionService) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now()
	rolled, err := s.subscriberRepo.ResetExpired(ctx, now)
	if err != nil {
		return rolled, err
	}
	if _, err := s.affiliateRepo.ExpireLapsedRewards(ctx, now); err != nil {
		return rolled, err
	}
	return rolled, nil
}

// currentSubscriber loads the record, creating it on first contact and lazily
// rolling over a stale period, then returns a record covering now.
func (s *subscriptionService) currentSubscriber(ctx context.Context, userID uuid.UUID) (*model.Subscriber, error) {
	now := s.now()

	sub, err := s.subscriberRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		start, end := NewPeriodStartingAt(now)
		sub = &model.Subscriber{
			UserID:             userID,
			Tier:               model.TierFree,
			MonthlyLimit:       model.LimitsFor(model.TierFree).MonthlyLimit,
			BillingPeriodStart: start,
			BillingPeriodEnd:   end,
		}
		if createErr := s.subscriberRepo.Create(ctx, sub); createErr != nil {
			// A concurrent first call may have won the insert.
			sub, err = s.subscriberRepo.GetByUserID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("create subscriber: %w", createErr)
			}
		}
	} else if err != nil {
		return nil, err
	}

	if !sub.PeriodExpired(now) {
		return sub, nil
	}

	start, end := AdvancePeriod(sub.BillingPeriodStart, sub.BillingPeriodEnd, now)
	limit := model.LimitsFor(sub.Tier).MonthlyLimit
	ok, err := s.subscriberRepo.RolloverPeriod(ctx, userID, sub.BillingPeriodEnd, start, end, limit)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the rollover race to a concurrent call or the sweep; reload.
		return s.subscriberRepo.GetByUserID(ctx, userID)
	}

	sub.BillingPeriodStart = start
	sub.BillingPeriodEnd = end
	sub.MonthlyAppointmentsUsed = 0
	sub.MonthlyLimit = limit
	return sub, nil
}

func (s *subscriptionService) effectiveTierFor(ctx context.Context, sub *model.Subscriber) (model.Tier, error) {
	tier := sub.Tier
	if !tier.Valid() {
		tier = model.TierFree
	}

	rewards, err := s.affiliateRepo.ListActiveRewards(ctx, sub.UserID, s.now())
	if err != nil {
		return tier, err
	}
	for _, reward := range rewards {
		granted := reward.RewardType.GrantedTier()
		if model.LimitsFor(granted).MonthlyLimit > model.LimitsFor(tier).MonthlyLimit {
			tier = granted
		}
	}
	return tier, nil
}
