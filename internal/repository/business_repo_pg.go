package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
)

type pgBusinessRepository struct {
	db *gorm.DB
}

func NewPGBusinessRepository(db *gorm.DB) BusinessRepository {
	return &pgBusinessRepository{db: db}
}

func (r *pgBusinessRepository) Create(ctx context.Context, business *model.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *pgBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *pgBusinessRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *pgBusinessRepository) GetBySlug(ctx context.Context, slug string) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *pgBusinessRepository) Update(ctx context.Context, business *model.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *pgBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Business{}, "id = ?", id).Error
}

type pgServiceRepository struct {
	db *gorm.DB
}

func NewPGServiceRepository(db *gorm.DB) ServiceRepository {
	return &pgServiceRepository{db: db}
}

func (r *pgServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *pgServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var svc model.Service
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *pgServiceRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Service, error) {
	q := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var services []model.Service
	if err := q.Order("created_at ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *pgServiceRepository) Update(ctx context.Context, svc *model.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

func (r *pgServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Service{}, "id = ?", id).Error
}

type pgAvailabilityRepository struct {
	db *gorm.DB
}

func NewPGAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &pgAvailabilityRepository{db: db}
}

func (r *pgAvailabilityRepository) ListWindows(ctx context.Context, businessID uuid.UUID) ([]model.Availability, error) {
	var windows []model.Availability
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	return windows, err
}

func (r *pgAvailabilityRepository) ReplaceWindows(ctx context.Context, businessID uuid.UUID, windows []model.Availability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", businessID).Delete(&model.Availability{}).Error; err != nil {
			return err
		}
		if len(windows) == 0 {
			return nil
		}
		return tx.Create(&windows).Error
	})
}

func (r *pgAvailabilityRepository) AddUnavailableDate(ctx context.Context, date *model.UnavailableDate) error {
	return r.db.WithContext(ctx).Create(date).Error
}

func (r *pgAvailabilityRepository) ListUnavailableDates(ctx context.Context, businessID uuid.UUID) ([]model.UnavailableDate, error) {
	var dates []model.UnavailableDate
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("date ASC").
		Find(&dates).Error
	return dates, err
}

func (r *pgAvailabilityRepository) RemoveUnavailableDate(ctx context.Context, businessID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Delete(&model.UnavailableDate{}, "id = ?", id).
		Error
}
