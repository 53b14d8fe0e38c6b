package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"teamcal-backend/domain/config"
	pkgerrors "teamcal-backend/pkg/errors"
)

// EventDetails is a value object for an event's descriptive fields
type EventDetails struct {
	title       string
	description string
}

// NewEventDetails creates details with validation using default configuration
func NewEventDetails(title, description string) (EventDetails, error) {
	return NewEventDetailsWithConfig(title, description, config.DefaultDomainConfig())
}

// NewEventDetailsWithConfig creates details with validation and configuration
func NewEventDetailsWithConfig(title, description string, cfg *config.DomainConfig) (EventDetails, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return EventDetails{}, pkgerrors.NewValidationError("title cannot be empty")
	}

	titleLength := utf8.RuneCountInString(title)
	if titleLength < cfg.MinTitleLength {
		return EventDetails{}, fmt.Errorf("title too short: minimum %d characters required", cfg.MinTitleLength)
	}

	if titleLength > cfg.MaxTitleLength {
		return EventDetails{}, fmt.Errorf("title exceeds maximum length of %d characters", cfg.MaxTitleLength)
	}

	if utf8.RuneCountInString(description) > cfg.MaxDescriptionLength {
		return EventDetails{}, fmt.Errorf("description exceeds maximum length of %d characters", cfg.MaxDescriptionLength)
	}

	if description == "" && !cfg.AllowEmptyDescription {
		return EventDetails{}, pkgerrors.NewValidationError("description cannot be empty")
	}

	return EventDetails{
		title:       title,
		description: description,
	}, nil
}

// Title returns the event title
func (d EventDetails) Title() string {
	return d.title
}

// Description returns the event description
func (d EventDetails) Description() string {
	return d.description
}

// IsEmpty checks if details are empty
func (d EventDetails) IsEmpty() bool {
	return d.title == "" && d.description == ""
}

// Equals checks if two details are equal
func (d EventDetails) Equals(other EventDetails) bool {
	return d.title == other.title &&
		d.description == other.description
}

// Summary returns a truncated summary of the details
func (d EventDetails) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	combined := d.title
	if d.description != "" {
		combined += ": " + d.description
	}

	if utf8.RuneCountInString(combined) <= maxLength {
		return combined
	}

	runes := []rune(combined)
	return string(runes[:maxLength-3]) + "..."
}
