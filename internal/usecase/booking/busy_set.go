package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/slotwise/scheduler/internal/domain/booking"
)

// BusySetAggregator merges local appointment rows and remote calendar
// free/busy blocks into one set of blocked intervals for a UTC window.
// The two sources are concatenated unmerged; consumers test pairwise.
type BusySetAggregator struct {
	repo    domain.Repository
	gateway domain.CalendarGateway
	log     zerolog.Logger
}

func NewBusySetAggregator(
	repo domain.Repository,
	gateway domain.CalendarGateway,
	log zerolog.Logger,
) *BusySetAggregator {
	return &BusySetAggregator{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

// Collect returns every blocked interval intersecting [windowStart,
// windowEnd). A local store failure is fatal. Any remote failure (missing
// token refresh, network, malformed payload) only drops the remote
// contribution and is logged, never surfaced.
func (a *BusySetAggregator) Collect(
	ctx context.Context,
	businessID uuid.UUID,
	windowStart time.Time,
	windowEnd time.Time,
) ([]domain.Interval, error) {

	appointments, err := a.repo.ListAppointmentsInWindow(ctx, businessID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(appointments))
	for _, ap := range appointments {
		busy = append(busy, domain.Interval{
			Start: ap.AppointmentStartTime,
			End:   ap.AppointmentEndTime,
		})
	}

	cred, err := a.repo.GetAuthCredential(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.RefreshToken == nil {
		return busy, nil
	}

	accessToken, err := a.gateway.RefreshAccessToken(ctx, *cred.RefreshToken)
	if err != nil {
		a.log.Warn().Err(err).
			Str("business_id", businessID.String()).
			Msg("calendar token refresh failed, using local busy set only")
		return busy, nil
	}

	freeBusy, err := a.gateway.QueryFreeBusy(ctx, accessToken, domain.PrimaryCalendarID, windowStart, windowEnd)
	if err != nil {
		a.log.Warn().Err(err).
			Str("business_id", businessID.String()).
			Msg("calendar freebusy query failed, using local busy set only")
		return busy, nil
	}

	for _, periods := range freeBusy {
		for _, p := range periods {
			busy = append(busy, domain.Interval{Start: p.Start, End: p.End})
		}
	}

	return busy, nil
}
