package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/apperr"
	domain "github.com/slotwise/scheduler/internal/domain/booking"
	"github.com/slotwise/scheduler/internal/timezone"
)

const ClosedDayMessage = "Business is closed on this day."

type AvailabilityInput struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	Date       string // YYYY-MM-DD
}

type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// GetAvailability answers "what is free for service S at business B on
// date D". Results come back in generation order, ascending by start.
type GetAvailability struct {
	repo domain.Repository
	busy *BusySetAggregator
}

func NewGetAvailability(
	repo domain.Repository,
	gateway domain.CalendarGateway,
	log zerolog.Logger,
) *GetAvailability {
	return &GetAvailability{
		repo: repo,
		busy: NewBusySetAggregator(repo, gateway, log),
	}
}

// Execute returns the free slots plus an explanatory message for the
// closed-day case. It never fails just because the remote calendar is
// unreachable; only local reads and bad input abort the query.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]Slot, string, error) {

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, "", apperr.Validation("Invalid date. Use YYYY-MM-DD.")
	}

	service, err := uc.repo.GetServiceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, "", err
	}
	if service == nil {
		return nil, "", apperr.Validation("Invalid service_id.")
	}

	weekday := domain.MondayFirstWeekday(date)
	rules, err := uc.repo.GetRulesForWeekday(ctx, in.BusinessID, weekday)
	if err != nil {
		return nil, "", err
	}
	if len(rules) == 0 {
		return []Slot{}, ClosedDayMessage, nil
	}

	// The zone of the first matching rule anchors the day window.
	loc, err := timezone.Location(rules[0].TimeZone)
	if err != nil {
		return nil, "", invalidZone(err)
	}

	localMidnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	windowStart := localMidnight.UTC()
	windowEnd := localMidnight.AddDate(0, 0, 1).UTC()

	busySet, err := uc.busy.Collect(ctx, in.BusinessID, windowStart, windowEnd)
	if err != nil {
		return nil, "", err
	}

	candidates, err := domain.GenerateSlots(date, rules, service.Duration())
	if err != nil {
		return nil, "", invalidZone(err)
	}

	slots := make([]Slot, 0, len(candidates))
	for _, c := range candidates {
		iv := domain.Interval{Start: c.Start, End: c.End}
		if domain.OverlapsAny(iv, busySet) {
			continue
		}
		slots = append(slots, Slot{StartTime: c.Start, EndTime: c.End})
	}

	return slots, "", nil
}

func invalidZone(err error) error {
	if errors.Is(err, timezone.ErrInvalidTimeZone) {
		return apperr.Validation("Business has an invalid time zone configured.")
	}
	return err
}
