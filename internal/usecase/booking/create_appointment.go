package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/apperr"
	"github.com/slotwise/scheduler/internal/audit"
	domain "github.com/slotwise/scheduler/internal/domain/booking"
	"github.com/slotwise/scheduler/internal/models"
	"github.com/slotwise/scheduler/internal/timezone"
)

type CreateAppointmentInput struct {
	ServiceID  uuid.UUID
	BusinessID uuid.UUID

	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string

	StartTime time.Time // UTC instant
	Notes     *string
}

// CreateAppointment validates a requested appointment against declared
// operating hours, persists it, and synchronizes it to the external
// calendar, all inside one transaction. Any calendar failure rolls the
// whole thing back; a business without a refresh token gets a deliberate
// rollback and a distinct calendar-not-connected outcome. The hours check
// deliberately ignores the live busy set; two overlapping requests that
// each fit the declared hours can both commit.
type CreateAppointment struct {
	repo    domain.Repository
	gateway domain.CalendarGateway
	audit   *audit.Dispatcher
	log     zerolog.Logger
}

func NewCreateAppointment(
	repo domain.Repository,
	gateway domain.CalendarGateway,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		gateway: gateway,
		audit:   auditDispatcher,
		log:     log,
	}
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	var created *models.Appointment

	err := uc.repo.InTransaction(ctx, func(tx domain.Repository) error {

		service, err := tx.GetServiceByID(ctx, in.ServiceID)
		if err != nil {
			return err
		}
		if service == nil {
			return apperr.Validation("Invalid service_id.")
		}

		cred, err := tx.GetAuthCredential(ctx, in.BusinessID)
		if err != nil {
			return err
		}
		if cred == nil {
			return apperr.Validation("Business not found or not authenticated.")
		}

		business, err := tx.GetBusinessByID(ctx, in.BusinessID)
		if err != nil {
			return err
		}
		if business == nil || !business.IsActive {
			return apperr.StateConflict("This business is not currently accepting appointments.")
		}

		startTime := in.StartTime.UTC()
		endTime := startTime.Add(time.Duration(service.Duration()) * time.Minute)

		weekday := domain.MondayFirstWeekday(startTime)
		rules, err := tx.GetRulesForWeekday(ctx, in.BusinessID, weekday)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return apperr.StateConflict("Business is closed on this day.")
		}

		if err := checkOperatingHours(startTime, endTime, rules); err != nil {
			return err
		}

		created = &models.Appointment{
			ServiceID:            in.ServiceID,
			BusinessID:           in.BusinessID,
			CustomerName:         in.CustomerName,
			CustomerEmail:        in.CustomerEmail,
			CustomerPhone:        in.CustomerPhone,
			AppointmentStartTime: startTime,
			AppointmentEndTime:   endTime,
			Notes:                in.Notes,
		}
		if err := tx.CreateAppointment(ctx, created); err != nil {
			return err
		}

		// Appointments are never kept for a business without a live
		// calendar connection; this path rolls the insert back too.
		if cred.RefreshToken == nil {
			return apperr.CalendarNotConnected(fmt.Sprintf(
				"Info: Business %s has no Google Calendar connected.", in.BusinessID,
			))
		}

		accessToken, err := uc.gateway.RefreshAccessToken(ctx, *cred.RefreshToken)
		if err != nil {
			return apperr.Upstream("Failed to refresh Google token.", err)
		}

		event := buildCalendarEvent(service, in, startTime, endTime)
		if err := uc.gateway.InsertEvent(ctx, accessToken, event); err != nil {
			return apperr.Upstream("Google Calendar API error.", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &created.ID,
	})

	return created, nil
}

// checkOperatingHours converts the requested UTC bounds to the wall clock
// of the first rule's zone and requires the slot to fit inside at least
// one declared window. Only declared hours are validated here, not the
// live busy set.
func checkOperatingHours(startTime, endTime time.Time, rules []models.OperatingHourRule) error {
	zone := rules[0].TimeZone

	localStart, err := timezone.UTCToLocal(startTime, zone)
	if err != nil {
		return invalidZone(err)
	}
	localEnd, err := timezone.UTCToLocal(endTime, zone)
	if err != nil {
		return invalidZone(err)
	}

	startClock := domain.ClockOf(localStart)
	endClock := domain.ClockOf(localEnd)

	for _, rule := range rules {
		open, err := domain.ParseClock(rule.OpenTime)
		if err != nil {
			return err
		}
		close, err := domain.ParseClock(rule.CloseTime)
		if err != nil {
			return err
		}
		if startClock >= open && endClock <= close {
			return nil
		}
	}

	return apperr.StateConflict("Requested slot is outside operating hours.")
}

func buildCalendarEvent(
	service *models.Service,
	in CreateAppointmentInput,
	startTime, endTime time.Time,
) domain.CalendarEvent {

	notes := "N/A"
	if in.Notes != nil {
		notes = fmt.Sprintf("\n\nNotes: %s", *in.Notes)
	}

	return domain.CalendarEvent{
		Summary: fmt.Sprintf(
			"Appointment Scheduled: %s for %s",
			service.ServiceName, in.CustomerName,
		),
		Description: fmt.Sprintf(
			"Service: %s\nCustomer Phone: %s\nCustomer Email: %s\nNote: %s",
			service.ServiceName,
			derefOr(in.CustomerPhone, "N/A"),
			derefOr(in.CustomerEmail, "N/A"),
			notes,
		),
		Start:         startTime,
		End:           endTime,
		AttendeeEmail: derefOr(in.CustomerEmail, ""),
	}
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
