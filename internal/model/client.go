package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is an entry in the owner's client book, keyed by phone per owner.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_clients_user_phone,unique;not null" json:"user_id"`
	Phone     string    `gorm:"type:varchar(32);index:idx_clients_user_phone,unique;not null" json:"phone"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
