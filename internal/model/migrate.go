package model

import (
	"strings"

	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Business{},
		&Service{},
		&Availability{},
		&UnavailableDate{},
		&Appointment{},
		&Client{},
		&Subscriber{},
		&ReferralCode{},
		&Referral{},
		&AffiliateCredit{},
		&AffiliateReward{},
	); err != nil {
		return err
	}

	// Unique phone for non-soft-deleted users.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone " +
			"ON users (phone) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// Counter and ledger sanity enforced at the schema level as well.
	if err := db.Exec(
		"ALTER TABLE subscribers ADD CONSTRAINT chk_subscribers_used_non_negative " +
			"CHECK (monthly_appointments_used >= 0)",
	).Error; err != nil && !isDuplicateConstraint(err) {
		return err
	}
	if err := db.Exec(
		"ALTER TABLE affiliate_credits ADD CONSTRAINT chk_credits_balance_non_negative " +
			"CHECK (credits_earned >= credits_used AND credits_used >= 0)",
	).Error; err != nil && !isDuplicateConstraint(err) {
		return err
	}
	return nil
}

// AutoMigrate runs on every boot; ADD CONSTRAINT has no IF NOT EXISTS.
func isDuplicateConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
