package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "UTC midnight",
			input:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			expected: "2025-01-15",
		},
		{
			name:     "UTC late evening stays on same day",
			input:    time.Date(2025, 1, 15, 23, 59, 59, 0, time.UTC),
			expected: "2025-01-15",
		},
		{
			name:     "non-UTC instant normalized to UTC day",
			input:    time.Date(2025, 1, 15, 23, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			expected: "2025-01-16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayKey(tt.input))
		})
	}
}

func TestParseDayKey(t *testing.T) {
	day, err := ParseDayKey("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDayKey("03/09/2025")
	assert.Error(t, err)

	_, err = ParseDayKey("")
	assert.Error(t, err)
}

func TestDaysInRange(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected []string
		wantErr  bool
	}{
		{
			name:     "single day",
			start:    time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 15, 17, 0, 0, 0, time.UTC),
			expected: []string{"2025-01-15"},
		},
		{
			name:     "spans three days",
			start:    time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
			expected: []string{"2025-01-30", "2025-01-31", "2025-02-01"},
		},
		{
			name:     "crosses leap day",
			start:    time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			name:    "end before start",
			start:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			end:     time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := DaysInRange(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}
