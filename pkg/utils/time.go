package utils

import (
	"fmt"
	"time"
)

// DayKeyFormat is the layout for calendar day keys used in date-partitioned
// index keys. Day keys are always derived from UTC instants.
const DayKeyFormat = "2006-01-02"

// NowRFC3339 returns the current time in UTC RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FormatRFC3339 formats t in UTC RFC3339 format
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// DayKey returns the UTC calendar day of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyFormat)
}

// ParseDayKey parses a YYYY-MM-DD day key into a UTC midnight instant
func ParseDayKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return t, nil
}

// DaysInRange enumerates every UTC calendar day key from start through end
// inclusive. Returns an error when end precedes start.
func DaysInRange(start, end time.Time) ([]string, error) {
	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)

	if endDay.Before(startDay) {
		return nil, fmt.Errorf("range end %s precedes start %s", DayKey(end), DayKey(start))
	}

	days := make([]string, 0, int(endDay.Sub(startDay).Hours()/24)+1)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayKeyFormat))
	}
	return days, nil
}
