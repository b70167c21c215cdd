package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	BusinessID     *uuid.UUID        `gorm:"type:uuid;index" json:"business_id,omitempty"`
	ServiceID      *uuid.UUID        `gorm:"type:uuid" json:"service_id,omitempty"`
	ClientName     string            `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientPhone    string            `gorm:"type:varchar(32);not null" json:"client_phone"`
	ClientVerified bool              `gorm:"not null;default:false" json:"client_verified"`
	Date           time.Time         `gorm:"type:date;not null" json:"date"`
	StartTime      string            `gorm:"type:varchar(8)" json:"start_time,omitempty"`
	EndTime        string            `gorm:"type:varchar(8)" json:"end_time,omitempty"`
	Note           string            `gorm:"type:text" json:"note,omitempty"`
	Status         AppointmentStatus `gorm:"type:varchar(16);not null;default:'scheduled'" json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }
