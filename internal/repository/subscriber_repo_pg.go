package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
)

type pgSubscriberRepository struct {
	db *gorm.DB
}

func NewPGSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &pgSubscriberRepository{db: db}
}

func (r *pgSubscriberRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscriber, error) {
	var sub model.Subscriber
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriberRepository) Create(ctx context.Context, sub *model.Subscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *pgSubscriberRepository) IncrementUsage(ctx context.Context, userID uuid.UUID, limit int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Where("user_id = ? AND monthly_appointments_used < ?", userID, limit).
		UpdateColumn("monthly_appointments_used", gorm.Expr("monthly_appointments_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pgSubscriberRepository) DecrementUsage(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Where("user_id = ? AND monthly_appointments_used > 0", userID).
		UpdateColumn("monthly_appointments_used", gorm.Expr("monthly_appointments_used - 1")).
		Error
}

func (r *pgSubscriberRepository) RolloverPeriod(ctx context.Context, userID uuid.UUID, prevPeriodEnd, newStart, newEnd time.Time, limit int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Where("user_id = ? AND billing_period_end = ?", userID, prevPeriodEnd).
		UpdateColumns(map[string]interface{}{
			"monthly_appointments_used": 0,
			"monthly_limit":             limit,
			"billing_period_start":      newStart,
			"billing_period_end":        newEnd,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pgSubscriberRepository) ApplyBillingUpdate(ctx context.Context, userID uuid.UUID, tier model.Tier, subscribed bool, subscriptionEnd *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"tier":             tier,
			"subscribed":       subscribed,
			"monthly_limit":    model.LimitsFor(tier).MonthlyLimit,
			"subscription_end": subscriptionEnd,
		}).
		Error
}

func (r *pgSubscriberRepository) ResetExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		"UPDATE subscribers SET monthly_appointments_used = 0, "+
			"billing_period_start = billing_period_end, "+
			"billing_period_end = billing_period_end + interval '1 month', "+
			"updated_at = ? "+
			"WHERE billing_period_end <= ?",
		now, now,
	)
	return res.RowsAffected, res.Error
}
