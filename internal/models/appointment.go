package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment rows are written exactly once by the booking workflow and
// never mutated afterwards. Start and end are UTC instants.
type Appointment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null" json:"service_id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`

	CustomerName  string  `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail *string `gorm:"size:100" json:"customer_email"`
	CustomerPhone *string `gorm:"size:20" json:"customer_phone"`

	AppointmentStartTime time.Time `gorm:"index;not null" json:"appointment_start_time"`
	AppointmentEndTime   time.Time `gorm:"not null" json:"appointment_end_time"`

	Notes *string `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
