package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agendly/bookhub/internal/model"
)

type pgAffiliateRepository struct {
	db *gorm.DB
}

func NewPGAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &pgAffiliateRepository{db: db}
}

func (r *pgAffiliateRepository) GetCodeByUserID(ctx context.Context, userID uuid.UUID) (*model.ReferralCode, error) {
	var code model.ReferralCode
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *pgAffiliateRepository) GetCodeByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	if err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *pgAffiliateRepository) CreateCode(ctx context.Context, code *model.ReferralCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *pgAffiliateRepository) CreateReferral(ctx context.Context, ref *model.Referral) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *pgAffiliateRepository) GetReferralByID(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	var ref model.Referral
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *pgAffiliateRepository) GetReferralByReferredUser(ctx context.Context, referredUserID uuid.UUID) (*model.Referral, error) {
	var ref model.Referral
	if err := r.db.WithContext(ctx).Where("referred_user_id = ?", referredUserID).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *pgAffiliateRepository) ListReferralsByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.Referral, error) {
	var refs []model.Referral
	err := r.db.WithContext(ctx).
		Where("referrer_user_id = ?", referrerUserID).
		Order("created_at DESC").
		Find(&refs).Error
	return refs, err
}

func (r *pgAffiliateRepository) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	var refs []model.Referral
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&refs).Error
	return refs, err
}

func (r *pgAffiliateRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Referral, error) {
	var refs []model.Referral
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.ReferralStatusPending, cutoff).
		Find(&refs).Error
	return refs, err
}

func (r *pgAffiliateRepository) CountReferralsByReferrer(ctx context.Context, referrerUserID uuid.UUID) (ReferralCounts, error) {
	var rows []struct {
		Status model.ReferralStatus
		N      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Referral{}).
		Select("status, count(*) as n").
		Where("referrer_user_id = ?", referrerUserID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ReferralCounts{}, err
	}

	var counts ReferralCounts
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case model.ReferralStatusPending:
			counts.Pending += row.N
		case model.ReferralStatusCompleted:
			counts.Completed += row.N
		}
	}
	return counts, nil
}

func (r *pgAffiliateRepository) EnsureCredits(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&model.AffiliateCredit{UserID: userID}).
		Error
}

func (r *pgAffiliateRepository) GetCredits(ctx context.Context, userID uuid.UUID) (*model.AffiliateCredit, error) {
	var credits model.AffiliateCredit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&credits).Error; err != nil {
		return nil, err
	}
	return &credits, nil
}

func (r *pgAffiliateRepository) CompleteReferral(ctx context.Context, referralID uuid.UUID, creditsAward int, completedAt time.Time) (bool, error) {
	transitioned := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ref model.Referral
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", referralID).
			First(&ref).Error; err != nil {
			return err
		}
		if ref.Status != model.ReferralStatusPending {
			return nil
		}

		res := tx.Model(&model.Referral{}).
			Where("id = ? AND status = ?", referralID, model.ReferralStatusPending).
			UpdateColumns(map[string]interface{}{
				"status":       model.ReferralStatusCompleted,
				"completed_at": completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"credits_earned": gorm.Expr("affiliate_credits.credits_earned + ?", creditsAward),
				"last_updated":   completedAt,
			}),
		}).Create(&model.AffiliateCredit{
			UserID:        ref.ReferrerUserID,
			CreditsEarned: creditsAward,
		}).Error; err != nil {
			return err
		}

		transitioned = true
		return nil
	})
	return transitioned, err
}

func (r *pgAffiliateRepository) RedeemCredits(ctx context.Context, userID uuid.UUID, reward *model.AffiliateReward) (bool, error) {
	redeemed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AffiliateCredit{}).
			Where("user_id = ? AND credits_earned - credits_used >= ?", userID, reward.CreditsCost).
			UpdateColumn("credits_used", gorm.Expr("credits_used + ?", reward.CreditsCost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Create(reward).Error; err != nil {
			return err
		}
		redeemed = true
		return nil
	})
	return redeemed, err
}

func (r *pgAffiliateRepository) CreateReward(ctx context.Context, reward *model.AffiliateReward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *pgAffiliateRepository) ListActiveRewards(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.AffiliateReward, error) {
	var rewards []model.AffiliateReward
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			userID, model.RewardStatusActive, now).
		Order("applied_at DESC").
		Find(&rewards).Error
	return rewards, err
}

func (r *pgAffiliateRepository) ExpireLapsedRewards(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AffiliateReward{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.RewardStatusActive, now).
		UpdateColumn("status", model.RewardStatusExpired)
	return res.RowsAffected, res.Error
}
