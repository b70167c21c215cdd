package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
)

// AppointmentInput carries the fields of a booking request.
type AppointmentInput struct {
	ServiceID   *uuid.UUID
	ClientName  string
	ClientPhone string
	Date        time.Time
	StartTime   string
	EndTime     string
	Note        string
}

// PublicBusinessPage is what an anonymous visitor sees at /public/:slug.
type PublicBusinessPage struct {
	Business         *model.Business         `json:"business"`
	Services         []model.Service         `json:"services"`
	Availability     []model.Availability    `json:"availability"`
	UnavailableDates []model.UnavailableDate `json:"unavailable_dates"`
}

type BookingService interface {
	// CreateAppointment performs the limit pre-check, the domain write, and
	// the atomic usage increment, in that order. An increment refusal after a
	// successful insert means a concurrent booking took the last slot; the
	// insert is compensated so the counter never undercounts stored rows.
	CreateAppointment(ctx context.Context, ownerID uuid.UUID, input AppointmentInput) (*model.Appointment, error)

	ListAppointments(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, ownerID, appointmentID uuid.UUID, input AppointmentInput) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, ownerID, appointmentID uuid.UUID, status model.AppointmentStatus) error
	CancelAppointment(ctx context.Context, ownerID, appointmentID uuid.UUID) error

	// GetPublicPage resolves a booking page by slug for anonymous visitors.
	GetPublicPage(ctx context.Context, slug string) (*PublicBusinessPage, error)

	// CreatePublicAppointment books a slot on behalf of a visitor. Counts
	// against the page owner's quota under the same contract.
	CreatePublicAppointment(ctx context.Context, slug string, input AppointmentInput) (*model.Appointment, error)

	ListClients(ctx context.Context, ownerID uuid.UUID) ([]model.Client, error)
	UpdateClient(ctx context.Context, ownerID, clientID uuid.UUID, name, notes string) (*model.Client, error)
	DeleteClient(ctx context.Context, ownerID, clientID uuid.UUID) error
}

type bookingService struct {
	appointmentRepo repository.AppointmentRepository
	clientRepo      repository.ClientRepository
	businessRepo    repository.BusinessRepository
	serviceRepo     repository.ServiceRepository
	availRepo       repository.AvailabilityRepository
	subscriptions   SubscriptionService
}

func NewBookingService(
	appointmentRepo repository.AppointmentRepository,
	clientRepo repository.ClientRepository,
	businessRepo repository.BusinessRepository,
	serviceRepo repository.ServiceRepository,
	availRepo repository.AvailabilityRepository,
	subscriptions SubscriptionService,
) BookingService {
	return &bookingService{
		appointmentRepo: appointmentRepo,
		clientRepo:      clientRepo,
		businessRepo:    businessRepo,
		serviceRepo:     serviceRepo,
		availRepo:       availRepo,
		subscriptions:   subscriptions,
	}
}

func (s *bookingService) CreateAppointment(ctx context.Context, ownerID uuid.UUID, input AppointmentInput) (*model.Appointment, error) {
	var businessID *uuid.UUID
	if business, err := s.businessRepo.GetByUserID(ctx, ownerID); err == nil {
		businessID = &business.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.createCounted(ctx, ownerID, businessID, input)
}

func (s *bookingService) ListAppointments(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]model.Appointment, error) {
	return s.appointmentRepo.ListByUser(ctx, ownerID, from, to)
}

func (s *bookingService) UpdateAppointment(ctx context.Context, ownerID, appointmentID uuid.UUID, input AppointmentInput) (*model.Appointment, error) {
	appt, err := s.ownedAppointment(ctx, ownerID, appointmentID)
	if err != nil {
		return nil, err
	}

	if input.ClientName != "" {
		appt.ClientName = input.ClientName
	}
	if input.ClientPhone != "" {
		appt.ClientPhone = input.ClientPhone
	}
	if !input.Date.IsZero() {
		appt.Date = input.Date
	}
	if input.StartTime != "" {
		appt.StartTime = input.StartTime
	}
	if input.EndTime != "" {
		appt.EndTime = input.EndTime
	}
	appt.Note = input.Note
	if input.ServiceID != nil {
		appt.ServiceID = input.ServiceID
	}

	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *bookingService) UpdateAppointmentStatus(ctx context.Context, ownerID, appointmentID uuid.UUID, status model.AppointmentStatus) error {
	if _, err := s.ownedAppointment(ctx, ownerID, appointmentID); err != nil {
		return err
	}
	return s.appointmentRepo.UpdateStatus(ctx, appointmentID, status)
}

func (s *bookingService) CancelAppointment(ctx context.Context, ownerID, appointmentID uuid.UUID) error {
	if _, err := s.ownedAppointment(ctx, ownerID, appointmentID); err != nil {
		return err
	}
	// Cancelled appointments keep their slot: the month's usage reflects
	// bookings made, not bookings kept.
	return s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusCancelled)
}

func (s *bookingService) GetPublicPage(ctx context.Context, slug string) (*PublicBusinessPage, error) {
	business, err := s.businessRepo.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, ErrBusinessInactive
	}

	services, err := s.serviceRepo.ListByBusiness(ctx, business.ID, true)
	if err != nil {
		return nil, err
	}
	windows, err := s.availRepo.ListWindows(ctx, business.ID)
	if err != nil {
		return nil, err
	}
	dates, err := s.availRepo.ListUnavailableDates(ctx, business.ID)
	if err != nil {
		return nil, err
	}

	return &PublicBusinessPage{
		Business:         business,
		Services:         services,
		Availability:     windows,
		UnavailableDates: dates,
	}, nil
}

func (s *bookingService) CreatePublicAppointment(ctx context.Context, slug string, input AppointmentInput) (*model.Appointment, error) {
	business, err := s.businessRepo.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, ErrBusinessInactive
	}

	if input.ServiceID != nil {
		svc, err := s.serviceRepo.GetByID(ctx, *input.ServiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && svc.BusinessID != business.ID) {
			return nil, ErrServiceNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	return s.createCounted(ctx, business.UserID, &business.ID, input)
}

func (s *bookingService) ListClients(ctx context.Context, ownerID uuid.UUID) ([]model.Client, error) {
	return s.clientRepo.ListByUser(ctx, ownerID)
}

func (s *bookingService) UpdateClient(ctx context.Context, ownerID, clientID uuid.UUID, name, notes string) (*model.Client, error) {
	client, err := s.ownedClient(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		client.Name = name
	}
	client.Notes = notes
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *bookingService) DeleteClient(ctx context.Context, ownerID, clientID uuid.UUID) error {
	if _, err := s.ownedClient(ctx, ownerID, clientID); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, clientID)
}

// createCounted is the one write path for appointments: pre-check, insert,
// atomic increment, compensate on refusal.
func (s *bookingService) createCounted(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID, input AppointmentInput) (*model.Appointment, error) {
	limits, err := s.subscriptions.GetLimits(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !limits.CanCreateAppointment {
		return nil, ErrLimitExceeded
	}

	appt := &model.Appointment{
		UserID:      ownerID,
		BusinessID:  businessID,
		ServiceID:   input.ServiceID,
		ClientName:  input.ClientName,
		ClientPhone: input.ClientPhone,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Note:        input.Note,
		Status:      model.AppointmentStatusScheduled,
	}
	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	ok, err := s.subscriptions.IncrementUsage(ctx, ownerID)
	if err != nil || !ok {
		// Fail closed: no slot, no appointment.
		if delErr := s.appointmentRepo.Delete(ctx, appt.ID); delErr != nil {
			return nil, errors.Join(err, delErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrLimitExceeded
	}

	if input.ClientPhone != "" {
		_ = s.clientRepo.Upsert(ctx, &model.Client{
			UserID: ownerID,
			Phone:  input.ClientPhone,
			Name:   input.ClientName,
		})
	}

	return appt, nil
}

func (s *bookingService) ownedAppointment(ctx context.Context, ownerID, appointmentID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if appt.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return appt, nil
}

func (s *bookingService) ownedClient(ctx context.Context, ownerID, clientID uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if client.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return client, nil
}
