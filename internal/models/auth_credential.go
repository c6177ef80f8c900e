package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthCredential links a business to its Google account. The row exists
// from the moment the business completes calendar onboarding; the refresh
// token may still be absent when consent was not (re)granted.
type AuthCredential struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"business_id"`

	GoogleID     string  `gorm:"size:64;uniqueIndex;not null" json:"google_id"`
	RefreshToken *string `gorm:"size:512" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AuthCredential) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
