package valueobjects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventID(t *testing.T) {
	id := NewEventID()

	assert.NotEmpty(t, id.String())
	assert.False(t, id.IsZero())

	// Should be a valid UUID
	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
}

func TestNewEventIDFromString(t *testing.T) {
	validUUID := uuid.New().String()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid UUID string",
			input:   validUUID,
			wantErr: false,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "event ID cannot be empty",
		},
		{
			name:    "invalid UUID format",
			input:   "not-a-uuid",
			wantErr: true,
			errMsg:  "event ID must be a valid UUID",
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
			errMsg:  "event ID must be a valid UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewEventIDFromString(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				assert.True(t, id.IsZero())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.input, id.String())
				assert.False(t, id.IsZero())
			}
		})
	}
}

func TestUserIDAndTeamIDFromString(t *testing.T) {
	validUUID := uuid.New().String()

	userID, err := NewUserIDFromString(validUUID)
	require.NoError(t, err)
	assert.Equal(t, validUUID, userID.String())

	_, err = NewUserIDFromString("")
	assert.Error(t, err)

	teamID, err := NewTeamIDFromString(validUUID)
	require.NoError(t, err)
	assert.Equal(t, validUUID, teamID.String())

	_, err = NewTeamIDFromString("bogus")
	assert.Error(t, err)
}

func TestEventID_Equals(t *testing.T) {
	id1 := NewEventID()
	id2 := NewEventID()
	id1Copy, _ := NewEventIDFromString(id1.String())

	tests := []struct {
		name     string
		id       EventID
		other    EventID
		expected bool
	}{
		{
			name:     "same ID via copy",
			id:       id1,
			other:    id1Copy,
			expected: true,
		},
		{
			name:     "same ID reference",
			id:       id1,
			other:    id1,
			expected: true,
		},
		{
			name:     "different IDs",
			id:       id1,
			other:    id2,
			expected: false,
		},
		{
			name:     "both zero values",
			id:       EventID{},
			other:    EventID{},
			expected: true,
		},
		{
			name:     "one zero value",
			id:       id1,
			other:    EventID{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.id.Equals(tt.other)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEventID_MarshalUnmarshalRoundTrip(t *testing.T) {
	originalID := NewEventID()

	data, err := originalID.MarshalJSON()
	require.NoError(t, err)

	var newID EventID
	err = newID.UnmarshalJSON(data)
	require.NoError(t, err)

	assert.True(t, originalID.Equals(newID))
	assert.Equal(t, originalID.String(), newID.String())
}

func TestEventID_UnmarshalRejectsEmpty(t *testing.T) {
	var id EventID
	err := id.UnmarshalJSON([]byte(`""`))
	assert.Error(t, err)

	// null leaves the zero value untouched
	err = id.UnmarshalJSON([]byte(`null`))
	assert.NoError(t, err)
	assert.True(t, id.IsZero())
}

// Benchmarks
func BenchmarkNewEventID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewEventID()
	}
}

func BenchmarkEventID_Equals(b *testing.B) {
	id1 := NewEventID()
	id2 := NewEventID()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = id1.Equals(id2)
	}
}
