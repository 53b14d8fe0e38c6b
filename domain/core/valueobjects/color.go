package valueobjects

import (
	"errors"
	"regexp"
	"strings"
)

// colorRegex matches a hash followed by exactly six hex digits
var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Color is a value object representing a display color in #RRGGBB form.
// The stored form is always uppercase.
type Color struct {
	value string
}

// NewColor creates a Color from a raw string, normalizing hex digits to uppercase
func NewColor(raw string) (Color, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Color{}, errors.New("color cannot be empty")
	}
	if !colorRegex.MatchString(trimmed) {
		return Color{}, errors.New("color must match #RRGGBB")
	}
	return Color{value: strings.ToUpper(trimmed)}, nil
}

// String returns the normalized color string
func (c Color) String() string {
	return c.value
}

// Equals checks if two Colors are equal
func (c Color) Equals(other Color) bool {
	return c.value == other.value
}

// IsZero checks if the Color is the zero value
func (c Color) IsZero() bool {
	return c.value == ""
}

// MarshalJSON implements json.Marshaler
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Color) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "Color")
	if err != nil || isNull {
		return err
	}
	color, err := NewColor(value)
	if err != nil {
		return err
	}
	*c = color
	return nil
}
