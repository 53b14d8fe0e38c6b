package validators

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitization runs after structural validation and never fails. Every
// function here is idempotent: applying it to its own output returns
// the same value, so re-sanitizing stored data is safe.

// htmlPolicy strips every tag, including script and iframe bodies and
// event-handler attributes. Text content survives in escaped form.
var htmlPolicy = bluemonday.StrictPolicy()

// whitespaceRun matches any run of whitespace characters
var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitizer normalizes validated input before persistence
type Sanitizer struct{}

// NewSanitizer creates a sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Text trims the string and collapses internal whitespace runs to a
// single space. Applied to every free-text field.
func (s *Sanitizer) Text(value string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

// Description strips HTML markup, then normalizes whitespace. The HTML
// policy removes script and iframe contents entirely and drops all
// attributes, so on* handlers cannot survive.
func (s *Sanitizer) Description(value string) string {
	return s.Text(htmlPolicy.Sanitize(value))
}

// Email lowercases and trims an email address
func (s *Sanitizer) Email(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Color normalizes a color string to uppercase #RRGGBB form. Values that
// failed validation pass through with only whitespace trimmed.
func (s *Sanitizer) Color(value string) string {
	trimmed := strings.TrimSpace(value)
	if colorPattern.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}
	return trimmed
}

// EventCreate sanitizes a full event payload in place
func (s *Sanitizer) EventCreate(input EventCreateInput) EventCreateInput {
	input.Title = s.Text(input.Title)
	input.Description = s.Description(input.Description)
	input.Color = s.Color(input.Color)
	input.Category = strings.TrimSpace(input.Category)
	return input
}

// EventUpdate sanitizes the present fields of a partial event payload
func (s *Sanitizer) EventUpdate(input EventUpdateInput) EventUpdateInput {
	if input.Title != nil {
		title := s.Text(*input.Title)
		input.Title = &title
	}
	if input.Description != nil {
		description := s.Description(*input.Description)
		input.Description = &description
	}
	if input.Color != nil {
		color := s.Color(*input.Color)
		input.Color = &color
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		input.Category = &category
	}
	return input
}
