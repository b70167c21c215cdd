package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
)

type SubscriberRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscriber, error)
	Create(ctx context.Context, sub *model.Subscriber) error

	// IncrementUsage atomically takes one appointment slot if the counter is
	// below limit. Returns whether a slot was taken.
	IncrementUsage(ctx context.Context, userID uuid.UUID, limit int) (bool, error)

	// DecrementUsage releases one slot, flooring at zero.
	DecrementUsage(ctx context.Context, userID uuid.UUID) error

	// RolloverPeriod advances the billing period and resets the counter,
	// guarded by the previous period end so concurrent rollovers apply once.
	RolloverPeriod(ctx context.Context, userID uuid.UUID, prevPeriodEnd, newStart, newEnd time.Time, limit int) (bool, error)

	// ApplyBillingUpdate writes tier changes coming from the billing provider.
	ApplyBillingUpdate(ctx context.Context, userID uuid.UUID, tier model.Tier, subscribed bool, subscriptionEnd *time.Time) error

	// ResetExpired rolls over every record whose period has lapsed. Used by the
	// scheduled sweep; lazy per-user rollover remains authoritative.
	ResetExpired(ctx context.Context, now time.Time) (int64, error)
}
