package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName      string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone         string         `gorm:"type:varchar(32);not null" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	PasswordHash  string         `gorm:"type:varchar(255);not null" json:"-"`
	PhoneVerified bool           `gorm:"not null;default:false" json:"phone_verified"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
