package availability

import "time"

// Interval is a half-open [Start, End) range. A nil End is open-ended and
// extends indefinitely into the future.
type Interval struct {
	Start time.Time
	End   *time.Time
}

func Closed(start, end time.Time) Interval {
	e := end
	return Interval{Start: start, End: &e}
}

func OpenEnded(start time.Time) Interval {
	return Interval{Start: start}
}

func (i Interval) IsOpenEnded() bool {
	return i.End == nil
}

// Overlaps reports whether the two ranges share any instant. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	if o.End != nil && !i.Start.Before(*o.End) {
		return false
	}
	if i.End != nil && !o.Start.Before(*i.End) {
		return false
	}
	return true
}

// Valid reports whether a closed interval has a positive length.
func (i Interval) Valid() bool {
	return i.End == nil || i.End.After(i.Start)
}
