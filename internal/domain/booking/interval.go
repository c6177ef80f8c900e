package booking

import "time"

// Interval is a half-open UTC time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// a.Start < b.End && a.End > b.Start.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// OverlapsAny reports whether iv intersects at least one interval in set.
// The set needs no coalescing; the test is pairwise.
func OverlapsAny(iv Interval, set []Interval) bool {
	for _, busy := range set {
		if iv.Overlaps(busy) {
			return true
		}
	}
	return false
}
