package booking

import (
	"fmt"
	"time"
)

// ParseClock parses a local wall-clock string ("HH:MM:SS", seconds
// optional) into seconds since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// ClockOf returns t's wall clock as seconds since midnight in t's location.
func ClockOf(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// MondayFirstWeekday maps t's weekday to the 1..7 Monday-first convention.
func MondayFirstWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
