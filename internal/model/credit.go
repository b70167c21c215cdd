package model

import (
	"time"

	"github.com/google/uuid"
)

// AffiliateCredit is a user's referral credit ledger. creditsAvailable is
// derived, never stored: earned - used, and the conditional debit in the
// repository guarantees it never goes negative.
type AffiliateCredit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CreditsEarned int       `gorm:"not null;default:0" json:"credits_earned"`
	CreditsUsed   int       `gorm:"not null;default:0" json:"credits_used"`
	LastUpdated   time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (AffiliateCredit) TableName() string { return "affiliate_credits" }

func (c *AffiliateCredit) CreditsAvailable() int {
	return c.CreditsEarned - c.CreditsUsed
}
