package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// UserID is a value object representing a unique user identifier
// Value objects are immutable and have no identity beyond their value
type UserID struct {
	value string
}

// NewUserID creates a new random UserID
func NewUserID() UserID {
	return UserID{value: uuid.New().String()}
}

// NewUserIDFromString creates a UserID from an existing string
func NewUserIDFromString(id string) (UserID, error) {
	if id == "" {
		return UserID{}, errors.New("user ID cannot be empty")
	}
	if !isValidUUID(id) {
		return UserID{}, errors.New("user ID must be a valid UUID")
	}
	return UserID{value: id}, nil
}

// String returns the string representation of the UserID
func (id UserID) String() string {
	return id.value
}

// Equals checks if two UserIDs are equal
func (id UserID) Equals(other UserID) bool {
	return id.value == other.value
}

// IsZero checks if the UserID is the zero value
func (id UserID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id UserID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *UserID) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "UserID")
	if err != nil || isNull {
		return err
	}
	id.value = value
	return nil
}

// TeamID is a value object representing a unique team identifier
type TeamID struct {
	value string
}

// NewTeamID creates a new random TeamID
func NewTeamID() TeamID {
	return TeamID{value: uuid.New().String()}
}

// NewTeamIDFromString creates a TeamID from an existing string
func NewTeamIDFromString(id string) (TeamID, error) {
	if id == "" {
		return TeamID{}, errors.New("team ID cannot be empty")
	}
	if !isValidUUID(id) {
		return TeamID{}, errors.New("team ID must be a valid UUID")
	}
	return TeamID{value: id}, nil
}

// String returns the string representation of the TeamID
func (id TeamID) String() string {
	return id.value
}

// Equals checks if two TeamIDs are equal
func (id TeamID) Equals(other TeamID) bool {
	return id.value == other.value
}

// IsZero checks if the TeamID is the zero value
func (id TeamID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id TeamID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *TeamID) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "TeamID")
	if err != nil || isNull {
		return err
	}
	id.value = value
	return nil
}

// EventID is a value object representing a unique event identifier
type EventID struct {
	value string
}

// NewEventID creates a new random EventID
func NewEventID() EventID {
	return EventID{value: uuid.New().String()}
}

// NewEventIDFromString creates an EventID from an existing string
func NewEventIDFromString(id string) (EventID, error) {
	if id == "" {
		return EventID{}, errors.New("event ID cannot be empty")
	}
	if !isValidUUID(id) {
		return EventID{}, errors.New("event ID must be a valid UUID")
	}
	return EventID{value: id}, nil
}

// String returns the string representation of the EventID
func (id EventID) String() string {
	return id.value
}

// Equals checks if two EventIDs are equal
func (id EventID) Equals(other EventID) bool {
	return id.value == other.value
}

// IsZero checks if the EventID is the zero value
func (id EventID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id EventID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *EventID) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "EventID")
	if err != nil || isNull {
		return err
	}
	id.value = value
	return nil
}

// unquoteIDJSON strips the surrounding quotes from a JSON string token.
// A JSON null leaves the target untouched; an empty string is rejected.
func unquoteIDJSON(data []byte, kind string) (string, bool, error) {
	if string(data) == "null" {
		return "", true, nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", false, errors.New(kind + " must be a string")
	}
	value := string(data[1 : len(data)-1])
	if value == "" {
		return "", false, errors.New(kind + " cannot be empty")
	}
	return value, false, nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
