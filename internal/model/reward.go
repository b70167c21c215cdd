package model

import (
	"time"

	"github.com/google/uuid"
)

type RewardStatus string

const (
	RewardStatusActive  RewardStatus = "active"
	RewardStatusExpired RewardStatus = "expired"
)

// AffiliateReward is a time-boxed entitlement bought with credits (or granted
// free at referred signup). While active it overrides the subscriber's base tier.
type AffiliateReward struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	RewardType  RewardType   `gorm:"type:varchar(32);not null" json:"reward_type"`
	CreditsCost int          `gorm:"not null" json:"credits_cost"`
	Status      RewardStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	AppliedAt   time.Time    `gorm:"not null" json:"applied_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
}

func (AffiliateReward) TableName() string { return "affiliate_rewards" }

// ActiveAt reports whether the reward is live at the given instant.
func (r *AffiliateReward) ActiveAt(now time.Time) bool {
	if r.Status != RewardStatusActive {
		return false
	}
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}
