package repository

import (
	"context"

	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	MarkPhoneVerified(ctx context.Context, id uuid.UUID) error
}
