package valueobjects

import (
	"errors"
	"time"
)

// TimeRange is a value object representing an event's time span.
// The invariant start < end holds for every constructed TimeRange,
// and both instants are normalized to UTC.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange creates a TimeRange, enforcing start < end
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() {
		return TimeRange{}, errors.New("start time is required")
	}
	if end.IsZero() {
		return TimeRange{}, errors.New("end time is required")
	}
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return TimeRange{}, errors.New("start time must be before end time")
	}
	return TimeRange{start: start, end: end}, nil
}

// Start returns the UTC start instant
func (tr TimeRange) Start() time.Time {
	return tr.start
}

// End returns the UTC end instant
func (tr TimeRange) End() time.Time {
	return tr.end
}

// Duration returns the span between start and end
func (tr TimeRange) Duration() time.Duration {
	return tr.end.Sub(tr.start)
}

// StartDay returns the UTC calendar day of the start instant as YYYY-MM-DD.
// Date-partitioned index keys are derived from this value.
func (tr TimeRange) StartDay() string {
	return tr.start.Format("2006-01-02")
}

// Contains reports whether t falls within the range, start inclusive, end exclusive
func (tr TimeRange) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(tr.start) && u.Before(tr.end)
}

// Overlaps reports whether two ranges share any instant
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.start.Before(other.end) && other.start.Before(tr.end)
}

// Equals checks if two TimeRanges are equal
func (tr TimeRange) Equals(other TimeRange) bool {
	return tr.start.Equal(other.start) && tr.end.Equal(other.end)
}

// IsZero checks if the TimeRange is the zero value
func (tr TimeRange) IsZero() bool {
	return tr.start.IsZero() && tr.end.IsZero()
}
