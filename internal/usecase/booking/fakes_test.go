package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domain "github.com/slotwise/scheduler/internal/domain/booking"
	"github.com/slotwise/scheduler/internal/models"
)

// fakeRepo is an in-memory Repository. InTransaction snapshots the
// appointment set and restores it when fn fails, mirroring a rollback.
type fakeRepo struct {
	businesses map[uuid.UUID]*models.Business
	services   map[uuid.UUID]*models.Service
	creds      map[uuid.UUID]*models.AuthCredential
	rules      map[int][]models.OperatingHourRule

	appointments []models.Appointment

	listErr   error
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		businesses: map[uuid.UUID]*models.Business{},
		services:   map[uuid.UUID]*models.Service{},
		creds:      map[uuid.UUID]*models.AuthCredential{},
		rules:      map[int][]models.OperatingHourRule{},
	}
}

func (r *fakeRepo) GetBusinessByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	return r.businesses[id], nil
}

func (r *fakeRepo) GetServiceByID(_ context.Context, id uuid.UUID) (*models.Service, error) {
	return r.services[id], nil
}

func (r *fakeRepo) GetAuthCredential(_ context.Context, businessID uuid.UUID) (*models.AuthCredential, error) {
	return r.creds[businessID], nil
}

func (r *fakeRepo) GetRulesForWeekday(_ context.Context, _ uuid.UUID, dayOfWeek int) ([]models.OperatingHourRule, error) {
	return r.rules[dayOfWeek], nil
}

func (r *fakeRepo) ReplaceWeeklySchedule(_ context.Context, _ uuid.UUID, rules []models.OperatingHourRule) error {
	byDay := map[int][]models.OperatingHourRule{}
	for _, rule := range rules {
		byDay[rule.DayOfWeek] = append(byDay[rule.DayOfWeek], rule)
	}
	r.rules = byDay
	return nil
}

func (r *fakeRepo) ListAppointmentsInWindow(
	_ context.Context,
	businessID uuid.UUID,
	windowStart, windowEnd time.Time,
) ([]models.Appointment, error) {

	if r.listErr != nil {
		return nil, r.listErr
	}

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BusinessID == businessID &&
			ap.AppointmentStartTime.Before(windowEnd) &&
			ap.AppointmentEndTime.After(windowStart) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if ap.ID == uuid.Nil {
		ap.ID = uuid.New()
	}
	r.appointments = append(r.appointments, *ap)
	return nil
}

func (r *fakeRepo) InTransaction(_ context.Context, fn func(domain.Repository) error) error {
	snapshot := make([]models.Appointment, len(r.appointments))
	copy(snapshot, r.appointments)

	if err := fn(r); err != nil {
		r.appointments = snapshot
		return err
	}
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

type fakeGateway struct {
	accessToken string
	refreshErr  error

	busy        map[string][]domain.BusyPeriod
	freeBusyErr error

	inserted  []domain.CalendarEvent
	insertErr error
}

func (g *fakeGateway) RefreshAccessToken(_ context.Context, _ string) (string, error) {
	if g.refreshErr != nil {
		return "", g.refreshErr
	}
	if g.accessToken == "" {
		return "token", nil
	}
	return g.accessToken, nil
}

func (g *fakeGateway) QueryFreeBusy(
	_ context.Context,
	_ string,
	_ string,
	_ time.Time,
	_ time.Time,
) (map[string][]domain.BusyPeriod, error) {

	if g.freeBusyErr != nil {
		return nil, g.freeBusyErr
	}
	if g.busy == nil {
		return map[string][]domain.BusyPeriod{}, nil
	}
	return g.busy, nil
}

func (g *fakeGateway) InsertEvent(_ context.Context, _ string, event domain.CalendarEvent) error {
	if g.insertErr != nil {
		return g.insertErr
	}
	g.inserted = append(g.inserted, event)
	return nil
}

var _ domain.CalendarGateway = (*fakeGateway)(nil)

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
