package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability is a weekly opening window of a business.
// DayOfWeek follows time.Weekday: 0 = Sunday.
type Availability struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	DayOfWeek  int       `gorm:"not null" json:"day_of_week"`
	StartTime  string    `gorm:"type:varchar(8);not null" json:"start_time"` // "09:00"
	EndTime    string    `gorm:"type:varchar(8);not null" json:"end_time"`   // "17:30"
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Availability) TableName() string { return "availability" }

// UnavailableDate blocks a whole day (holiday, vacation).
type UnavailableDate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BusinessID  uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Tag         string    `gorm:"type:varchar(64)" json:"tag,omitempty"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UnavailableDate) TableName() string { return "unavailable_dates" }
