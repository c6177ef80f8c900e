package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatingHourRule declares one open window for one weekday in the
// business's own time zone. A weekday may carry several rules (split
// shifts). DayOfWeek is Monday-first, 1..7.
type OperatingHourRule struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`

	DayOfWeek int    `gorm:"not null" json:"day_of_week"`
	OpenTime  string `gorm:"size:8;not null" json:"open_time"`  // HH:MM:SS local wall clock
	CloseTime string `gorm:"size:8;not null" json:"close_time"` // HH:MM:SS local wall clock
	TimeZone  string `gorm:"size:64;not null" json:"time_zone"` // IANA zone id

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *OperatingHourRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
