package repository

import (
	"context"

	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Business, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Business, error)
	GetBySlug(ctx context.Context, slug string) (*model.Business, error)
	Update(ctx context.Context, business *model.Business) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Service, error)
	Update(ctx context.Context, svc *model.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AvailabilityRepository interface {
	ListWindows(ctx context.Context, businessID uuid.UUID) ([]model.Availability, error)
	ReplaceWindows(ctx context.Context, businessID uuid.UUID, windows []model.Availability) error
	AddUnavailableDate(ctx context.Context, date *model.UnavailableDate) error
	ListUnavailableDates(ctx context.Context, businessID uuid.UUID) ([]model.UnavailableDate, error)
	RemoveUnavailableDate(ctx context.Context, businessID, id uuid.UUID) error
}
