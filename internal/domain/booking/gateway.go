package booking

import (
	"context"
	"time"
)

// PrimaryCalendarID is the provider calendar all bookings sync into.
const PrimaryCalendarID = "primary"

// BusyPeriod is one committed range reported by the external calendar.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}

// CalendarEvent is the provider-agnostic shape of an event to insert.
// Start and End are UTC instants.
type CalendarEvent struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
}

// CalendarGateway is the external-provider boundary shared by the
// availability query and the booking workflow.
type CalendarGateway interface {
	RefreshAccessToken(
		ctx context.Context,
		refreshToken string,
	) (string, error)

	QueryFreeBusy(
		ctx context.Context,
		accessToken string,
		calendarID string,
		timeMin time.Time,
		timeMax time.Time,
	) (map[string][]BusyPeriod, error)

	InsertEvent(
		ctx context.Context,
		accessToken string,
		event CalendarEvent,
	) error
}
