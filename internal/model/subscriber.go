package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is the per-user subscription record: tier, monthly usage counter,
// and the billing period the counter belongs to. Rows are created lazily on the
// first limit query and never deleted; rollover supersedes stale periods.
type Subscriber struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                  uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Tier                    Tier       `gorm:"type:varchar(32);not null;default:'free'" json:"subscription_tier"`
	Subscribed              bool       `gorm:"not null;default:false" json:"subscribed"`
	MonthlyAppointmentsUsed int        `gorm:"not null;default:0" json:"monthly_appointments_used"`
	MonthlyLimit            int        `gorm:"not null;default:10" json:"monthly_limit"`
	BillingPeriodStart      time.Time  `gorm:"not null" json:"billing_period_start"`
	BillingPeriodEnd        time.Time  `gorm:"not null" json:"billing_period_end"`
	SubscriptionEnd         *time.Time `json:"subscription_end,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (Subscriber) TableName() string { return "subscribers" }

// PeriodExpired reports whether the stored billing period no longer covers now.
func (s *Subscriber) PeriodExpired(now time.Time) bool {
	return !now.Before(s.BillingPeriodEnd)
}
