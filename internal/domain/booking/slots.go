package booking

import (
	"time"

	"github.com/slotwise/scheduler/internal/models"
	"github.com/slotwise/scheduler/internal/timezone"
)

// SlotStepMinutes is the fixed walk increment between candidate starts.
// The walk advances by the step, not the service duration, so candidates
// from one rule may overlap each other; the busy-set filter downstream is
// responsible for conflicts.
const SlotStepMinutes = 30

// CandidateSlot is a tentative bookable interval in UTC, tagged with the
// zone of the rule that produced it.
type CandidateSlot struct {
	Start    time.Time
	End      time.Time
	TimeZone string
}

// GenerateSlots walks every rule for the given civil date independently,
// emitting a candidate whenever start+duration still fits before close.
// Zero rules means a closed day and yields an empty result, not an error.
func GenerateSlots(date time.Time, rules []models.OperatingHourRule, durationMin int) ([]CandidateSlot, error) {
	durationSec := durationMin * 60
	stepSec := SlotStepMinutes * 60

	var slots []CandidateSlot
	for _, rule := range rules {
		loc, err := timezone.Location(rule.TimeZone)
		if err != nil {
			return nil, err
		}

		open, err := ParseClock(rule.OpenTime)
		if err != nil {
			return nil, err
		}
		close, err := ParseClock(rule.CloseTime)
		if err != nil {
			return nil, err
		}

		for cur := open; cur+durationSec <= close; cur += stepSec {
			localStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, cur, 0, loc)
			localEnd := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, cur+durationSec, 0, loc)

			slots = append(slots, CandidateSlot{
				Start:    localStart.UTC(),
				End:      localEnd.UTC(),
				TimeZone: rule.TimeZone,
			})
		}
	}

	return slots, nil
}
