package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	BusinessName string `gorm:"size:100;not null" json:"business_name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	Location    *string `gorm:"size:255" json:"location"`
	PhoneNumber *string `gorm:"size:20" json:"phone_number"`
	Description *string `gorm:"size:500" json:"description"`

	ProfileImageURL *string `gorm:"size:512" json:"profile_image_url"`
	CoverImageURL   *string `gorm:"size:512" json:"cover_image_url"`

	IsActive              bool `gorm:"default:true" json:"is_active"`
	IsVerified            bool `gorm:"default:false" json:"is_verified"`
	GoogleIsConnected     bool `gorm:"default:false" json:"google_is_connected"`
	PhoneNumberIsWhatsapp bool `gorm:"default:false" json:"phone_number_is_whatsapp"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
