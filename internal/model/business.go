package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business is the public-facing booking page of an owner.
type Business struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Phone       string         `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Address     string         `gorm:"type:varchar(512)" json:"address,omitempty"`
	PaymentLink string         `gorm:"type:varchar(512)" json:"payment_link,omitempty"`
	Terms       string         `gorm:"type:text" json:"terms,omitempty"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Business) TableName() string { return "businesses" }
