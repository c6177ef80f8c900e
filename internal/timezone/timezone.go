package timezone

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeZone = errors.New("invalid time zone")

// Location resolves an IANA zone id, wrapping lookup failures in
// ErrInvalidTimeZone so callers can classify them.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty zone id", ErrInvalidTimeZone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, name)
	}
	return loc, nil
}

// LocalToUTC interprets the wall-clock fields of naive in the given zone
// and returns the corresponding UTC instant. Ambiguous wall clocks during
// a DST fold resolve to the later offset and nonexistent clocks during a
// gap roll forward, which is what time.Date does.
func LocalToUTC(naive time.Time, zone string) (time.Time, error) {
	loc, err := Location(zone)
	if err != nil {
		return time.Time{}, err
	}

	local := time.Date(
		naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(),
		loc,
	)
	return local.UTC(), nil
}

// UTCToLocal returns the given instant expressed in the zone's wall clock.
func UTCToLocal(instant time.Time, zone string) (time.Time, error) {
	loc, err := Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	return instant.In(loc), nil
}
