package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
)

// BusinessInput carries the editable fields of a business page.
type BusinessInput struct {
	Name        string
	Slug        string
	Description string
	Phone       string
	Address     string
	PaymentLink string
	Terms       string
	IsActive    *bool
}

// ServiceInput carries the editable fields of an offering.
type ServiceInput struct {
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
	IsActive        *bool
}

// AvailabilityWindow is one weekly opening slot in a settings update.
type AvailabilityWindow struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

type BusinessService interface {
	CreateBusiness(ctx context.Context, userID uuid.UUID, input BusinessInput) (*model.Business, error)
	GetOwnBusiness(ctx context.Context, userID uuid.UUID) (*model.Business, error)
	UpdateBusiness(ctx context.Context, userID uuid.UUID, input BusinessInput) (*model.Business, error)

	CreateService(ctx context.Context, userID uuid.UUID, input ServiceInput) (*model.Service, error)
	ListServices(ctx context.Context, userID uuid.UUID) ([]model.Service, error)
	UpdateService(ctx context.Context, userID, serviceID uuid.UUID, input ServiceInput) (*model.Service, error)
	DeleteService(ctx context.Context, userID, serviceID uuid.UUID) error

	ListAvailability(ctx context.Context, userID uuid.UUID) ([]model.Availability, error)
	SetAvailability(ctx context.Context, userID uuid.UUID, windows []AvailabilityWindow) error
	AddUnavailableDate(ctx context.Context, userID uuid.UUID, date *model.UnavailableDate) error
	ListUnavailableDates(ctx context.Context, userID uuid.UUID) ([]model.UnavailableDate, error)
	RemoveUnavailableDate(ctx context.Context, userID, dateID uuid.UUID) error
}

type businessService struct {
	businessRepo     repository.BusinessRepository
	serviceRepo      repository.ServiceRepository
	availabilityRepo repository.AvailabilityRepository
}

func NewBusinessService(
	businessRepo repository.BusinessRepository,
	serviceRepo repository.ServiceRepository,
	availabilityRepo repository.AvailabilityRepository,
) BusinessService {
	return &businessService{
		businessRepo:     businessRepo,
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func (s *businessService) CreateBusiness(ctx context.Context, userID uuid.UUID, input BusinessInput) (*model.Business, error) {
	if _, err := s.businessRepo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrBusinessExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, input.Slug)
	}
	if _, err := s.businessRepo.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	business := &model.Business{
		UserID:      userID,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Phone:       input.Phone,
		Address:     input.Address,
		PaymentLink: input.PaymentLink,
		Terms:       input.Terms,
		IsActive:    true,
	}
	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

func (s *businessService) GetOwnBusiness(ctx context.Context, userID uuid.UUID) (*model.Business, error) {
	business, err := s.businessRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	return business, err
}

func (s *businessService) UpdateBusiness(ctx context.Context, userID uuid.UUID, input BusinessInput) (*model.Business, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		business.Name = input.Name
	}
	if input.Slug != "" {
		slug := strings.ToLower(strings.TrimSpace(input.Slug))
		if slug != business.Slug {
			if !slugPattern.MatchString(slug) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, input.Slug)
			}
			if _, err := s.businessRepo.GetBySlug(ctx, slug); err == nil {
				return nil, ErrSlugTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			business.Slug = slug
		}
	}
	business.Description = input.Description
	business.Phone = input.Phone
	business.Address = input.Address
	business.PaymentLink = input.PaymentLink
	business.Terms = input.Terms
	if input.IsActive != nil {
		business.IsActive = *input.IsActive
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

func (s *businessService) CreateService(ctx context.Context, userID uuid.UUID, input ServiceInput) (*model.Service, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc := &model.Service{
		BusinessID:      business.ID,
		Name:            input.Name,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		IsActive:        true,
	}
	if svc.DurationMinutes <= 0 {
		svc.DurationMinutes = 30
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *businessService) ListServices(ctx context.Context, userID uuid.UUID) ([]model.Service, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.serviceRepo.ListByBusiness(ctx, business.ID, false)
}

func (s *businessService) UpdateService(ctx context.Context, userID, serviceID uuid.UUID, input ServiceInput) (*model.Service, error) {
	svc, err := s.ownedService(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		svc.Name = input.Name
	}
	svc.Description = input.Description
	if input.DurationMinutes > 0 {
		svc.DurationMinutes = input.DurationMinutes
	}
	svc.Price = input.Price
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *businessService) DeleteService(ctx context.Context, userID, serviceID uuid.UUID) error {
	if _, err := s.ownedService(ctx, userID, serviceID); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, serviceID)
}

func (s *businessService) ListAvailability(ctx context.Context, userID uuid.UUID) ([]model.Availability, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.ListWindows(ctx, business.ID)
}

func (s *businessService) SetAvailability(ctx context.Context, userID uuid.UUID, windows []AvailabilityWindow) error {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return err
	}

	models := make([]model.Availability, 0, len(windows))
	for _, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return fmt.Errorf("invalid day_of_week %d", w.DayOfWeek)
		}
		models = append(models, model.Availability{
			BusinessID: business.ID,
			DayOfWeek:  w.DayOfWeek,
			StartTime:  w.StartTime,
			EndTime:    w.EndTime,
			IsActive:   w.IsActive,
		})
	}
	return s.availabilityRepo.ReplaceWindows(ctx, business.ID, models)
}

func (s *businessService) AddUnavailableDate(ctx context.Context, userID uuid.UUID, date *model.UnavailableDate) error {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return err
	}
	date.BusinessID = business.ID
	return s.availabilityRepo.AddUnavailableDate(ctx, date)
}

func (s *businessService) ListUnavailableDates(ctx context.Context, userID uuid.UUID) ([]model.UnavailableDate, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.ListUnavailableDates(ctx, business.ID)
}

func (s *businessService) RemoveUnavailableDate(ctx context.Context, userID, dateID uuid.UUID) error {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return err
	}
	return s.availabilityRepo.RemoveUnavailableDate(ctx, business.ID, dateID)
}

func (s *businessService) ownedService(ctx context.Context, userID, serviceID uuid.UUID) (*model.Service, error) {
	business, err := s.GetOwnBusiness(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if svc.BusinessID != business.ID {
		return nil, ErrNotOwner
	}
	return svc, nil
}
