package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientRepository interface {
	Upsert(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}
