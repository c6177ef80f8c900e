package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slotwise/scheduler/internal/models"
)

// Repository is the store surface the engine consumes. Get methods
// return (nil, nil) for a missing row; a non-nil error always means the
// store itself failed.
type Repository interface {
	// -------- Business --------
	GetBusinessByID(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Business, error)

	// -------- Service --------
	GetServiceByID(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Service, error)

	// -------- Auth --------
	GetAuthCredential(
		ctx context.Context,
		businessID uuid.UUID,
	) (*models.AuthCredential, error)

	// -------- Operating hours --------
	GetRulesForWeekday(
		ctx context.Context,
		businessID uuid.UUID,
		dayOfWeek int,
	) ([]models.OperatingHourRule, error)

	ReplaceWeeklySchedule(
		ctx context.Context,
		businessID uuid.UUID,
		rules []models.OperatingHourRule,
	) error

	// -------- Appointments --------
	ListAppointmentsInWindow(
		ctx context.Context,
		businessID uuid.UUID,
		windowStart time.Time,
		windowEnd time.Time,
	) ([]models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// InTransaction runs fn against a transaction-scoped repository.
	// A non-nil return from fn rolls the transaction back.
	InTransaction(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
