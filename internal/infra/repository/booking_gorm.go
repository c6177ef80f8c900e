package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/slotwise/scheduler/internal/domain/booking"
	"github.com/slotwise/scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *BookingGormRepository) GetBusinessByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Business, error) {

	var business models.Business
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetServiceByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var service models.Service
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Auth
// --------------------------------------------------

func (r *BookingGormRepository) GetAuthCredential(
	ctx context.Context,
	businessID uuid.UUID,
) (*models.AuthCredential, error) {

	var cred models.AuthCredential
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// --------------------------------------------------
// Operating hours
// --------------------------------------------------

func (r *BookingGormRepository) GetRulesForWeekday(
	ctx context.Context,
	businessID uuid.UUID,
	dayOfWeek int,
) ([]models.OperatingHourRule, error) {

	var rules []models.OperatingHourRule
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND day_of_week = ?", businessID, dayOfWeek).
		Order("open_time ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ReplaceWeeklySchedule swaps the business's whole rule set atomically:
// delete plus bulk insert inside one transaction, never a per-row loop.
func (r *BookingGormRepository) ReplaceWeeklySchedule(
	ctx context.Context,
	businessID uuid.UUID,
	rules []models.OperatingHourRule,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("business_id = ?", businessID).
			Delete(&models.OperatingHourRule{}).Error; err != nil {
			return err
		}

		if len(rules) == 0 {
			return nil
		}

		for i := range rules {
			rules[i].BusinessID = businessID
		}
		return tx.Create(&rules).Error
	})
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *BookingGormRepository) ListAppointmentsInWindow(
	ctx context.Context,
	businessID uuid.UUID,
	windowStart time.Time,
	windowEnd time.Time,
) ([]models.Appointment, error) {

	var appointments []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"business_id = ? AND appointment_start_time < ? AND appointment_end_time > ?",
			businessID, windowEnd, windowStart,
		).
		Order("appointment_start_time ASC").
		Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *BookingGormRepository) InTransaction(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
