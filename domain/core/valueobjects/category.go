package valueobjects

import (
	"errors"
	"fmt"
)

// Category is a value object classifying a calendar event
type Category struct {
	value string
}

// Category values
var (
	CategoryMeeting  = Category{value: "meeting"}
	CategoryDeadline = Category{value: "deadline"}
	CategoryReminder = Category{value: "reminder"}
	CategorySocial   = Category{value: "social"}
	CategoryOther    = Category{value: "other"}
)

// validCategories is the closed set of category values
var validCategories = map[string]struct{}{
	"meeting":  {},
	"deadline": {},
	"reminder": {},
	"social":   {},
	"other":    {},
}

// NewCategoryFromString creates a Category from its string form
func NewCategoryFromString(raw string) (Category, error) {
	if raw == "" {
		return Category{}, errors.New("category cannot be empty")
	}
	if _, ok := validCategories[raw]; !ok {
		return Category{}, fmt.Errorf("category must be one of meeting, deadline, reminder, social, other, got %q", raw)
	}
	return Category{value: raw}, nil
}

// String returns the string representation of the Category
func (c Category) String() string {
	return c.value
}

// Equals checks if two Categories are equal
func (c Category) Equals(other Category) bool {
	return c.value == other.value
}

// IsZero checks if the Category is the zero value
func (c Category) IsZero() bool {
	return c.value == ""
}

// MarshalJSON implements json.Marshaler
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Category) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "Category")
	if err != nil || isNull {
		return err
	}
	category, err := NewCategoryFromString(value)
	if err != nil {
		return err
	}
	*c = category
	return nil
}
