package valueobjects

import (
	"errors"
	"regexp"
	"strings"
)

// emailRegex accepts the practical subset of RFC 5322 addresses
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MaxEmailLength bounds stored email addresses
const MaxEmailLength = 254

// Email is a value object representing a normalized email address.
// The stored form is always trimmed and lowercased, so two Emails
// constructed from differently-cased input compare equal.
type Email struct {
	value string
}

// NewEmail creates an Email from a raw string, normalizing case and whitespace
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, errors.New("email cannot be empty")
	}
	if len(normalized) > MaxEmailLength {
		return Email{}, errors.New("email exceeds maximum length")
	}
	if !emailRegex.MatchString(normalized) {
		return Email{}, errors.New("email format is invalid")
	}
	return Email{value: normalized}, nil
}

// String returns the normalized email address
func (e Email) String() string {
	return e.value
}

// Equals checks if two Emails are equal
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// IsZero checks if the Email is the zero value
func (e Email) IsZero() bool {
	return e.value == ""
}

// MarshalJSON implements json.Marshaler
func (e Email) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Email) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "Email")
	if err != nil || isNull {
		return err
	}
	email, err := NewEmail(value)
	if err != nil {
		return err
	}
	*e = email
	return nil
}
