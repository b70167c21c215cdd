package model

import (
	"time"

	"github.com/google/uuid"
)

// ReferralCode is a user's permanent share code, created lazily on first use.
type ReferralCode struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ReferralCode string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"referral_code"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ReferralCode) TableName() string { return "user_referral_codes" }

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// Referral links a referrer to a referred signup. A user can be referred at
// most once (unique index on referred_user_id).
type Referral struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ReferrerUserID uuid.UUID      `gorm:"type:uuid;index;not null" json:"referrer_user_id"`
	ReferredUserID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"referred_user_id"`
	ReferralCode   string         `gorm:"type:varchar(16);not null" json:"referral_code"`
	Status         ReferralStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	SourceIP       string         `gorm:"type:varchar(64)" json:"source_ip,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

func (Referral) TableName() string { return "affiliate_referrals" }
