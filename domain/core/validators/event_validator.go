package validators

import (
	"regexp"
	"time"
	"unicode/utf8"

	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
)

// colorPattern matches a hash followed by exactly six hex digits
var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// EventCreateInput is the raw payload for creating a calendar event,
// validated before any sanitization or persistence
type EventCreateInput struct {
	Title       string
	Description string
	Category    string
	Color       string
	StartTime   time.Time
	EndTime     time.Time
}

// EventUpdateInput is the raw partial payload for updating an event.
// Nil fields are absent; present fields must satisfy the create rules.
type EventUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Color       *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// IsEmpty reports whether the update carries no fields at all
func (in EventUpdateInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Category == nil &&
		in.Color == nil && in.StartTime == nil && in.EndTime == nil
}

// EventValidator validates event-related domain rules
type EventValidator struct {
	titleMinLength int
	titleMaxLength int
	descMaxLength  int
}

// NewEventValidator creates a new event validator with default rules
func NewEventValidator() *EventValidator {
	return NewEventValidatorWithConfig(config.DefaultDomainConfig())
}

// NewEventValidatorWithConfig creates a new event validator from configuration
func NewEventValidatorWithConfig(cfg *config.DomainConfig) *EventValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &EventValidator{
		titleMinLength: cfg.MinTitleLength,
		titleMaxLength: cfg.MaxTitleLength,
		descMaxLength:  cfg.MaxDescriptionLength,
	}
}

// ValidateCreate checks a full create payload. All violations are
// collected so the caller sees every bad field at once; nothing is
// written when any violation exists.
func (v *EventValidator) ValidateCreate(input EventCreateInput) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.validateTitle(input.Title); err != nil {
		validationErrors.AddError(err)
	}
	if err := v.validateDescription(input.Description); err != nil {
		validationErrors.AddError(err)
	}
	if input.Category != "" {
		if err := v.validateCategory(input.Category); err != nil {
			validationErrors.AddError(err)
		}
	}
	if input.Color != "" {
		if err := v.validateColor(input.Color); err != nil {
			validationErrors.AddError(err)
		}
	}
	if err := v.validateTimes(input.StartTime, input.EndTime); err != nil {
		validationErrors.AddError(err)
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// ValidateUpdate checks a partial payload; present fields must satisfy
// the same rules as create. Start and end times may arrive separately,
// so the cross-field ordering rule is only checked here when both are
// present; the caller re-checks it against the merged entity state.
func (v *EventValidator) ValidateUpdate(input EventUpdateInput) error {
	validationErrors := errors.NewValidationErrors()

	if input.IsEmpty() {
		validationErrors.Add("payload", "update requires at least one field")
		return validationErrors
	}

	if input.Title != nil {
		if err := v.validateTitle(*input.Title); err != nil {
			validationErrors.AddError(err)
		}
	}
	if input.Description != nil {
		if err := v.validateDescription(*input.Description); err != nil {
			validationErrors.AddError(err)
		}
	}
	if input.Category != nil {
		if err := v.validateCategory(*input.Category); err != nil {
			validationErrors.AddError(err)
		}
	}
	if input.Color != nil && *input.Color != "" {
		if err := v.validateColor(*input.Color); err != nil {
			validationErrors.AddError(err)
		}
	}
	if input.StartTime != nil && input.EndTime != nil {
		if err := v.validateTimes(*input.StartTime, *input.EndTime); err != nil {
			validationErrors.AddError(err)
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

func (v *EventValidator) validateTitle(title string) *errors.DomainError {
	length := utf8.RuneCountInString(title)

	if length < v.titleMinLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EVENT_TITLE_REQUIRED",
			"Event title is required",
		).WithDetail("field", "title")
	}

	if length > v.titleMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EVENT_TITLE_TOO_LONG",
			"Event title exceeds maximum length",
		).WithDetail("field", "title").
			WithDetail("actual_length", length).
			WithDetail("max_length", v.titleMaxLength)
	}

	return nil
}

func (v *EventValidator) validateDescription(description string) *errors.DomainError {
	length := utf8.RuneCountInString(description)

	if length > v.descMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EVENT_DESCRIPTION_TOO_LONG",
			"Event description exceeds maximum length",
		).WithDetail("field", "description").
			WithDetail("actual_length", length).
			WithDetail("max_length", v.descMaxLength)
	}

	return nil
}

func (v *EventValidator) validateCategory(category string) *errors.DomainError {
	if _, err := valueobjects.NewCategoryFromString(category); err != nil {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_CATEGORY",
			"Category must be one of meeting, deadline, reminder, social, other",
		).WithDetail("field", "category").WithDetail("value", category)
	}
	return nil
}

func (v *EventValidator) validateColor(color string) *errors.DomainError {
	if !colorPattern.MatchString(color) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_COLOR",
			"Color must match #RRGGBB",
		).WithDetail("field", "color").WithDetail("value", color)
	}
	return nil
}

func (v *EventValidator) validateTimes(start, end time.Time) *errors.DomainError {
	if start.IsZero() {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EVENT_START_REQUIRED",
			"Event start time is required",
		).WithDetail("field", "startTime")
	}
	if end.IsZero() {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EVENT_END_REQUIRED",
			"Event end time is required",
		).WithDetail("field", "endTime")
	}
	if !start.Before(end) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"Event start time must be before end time",
		).WithDetail("field", "startTime").
			WithDetail("start_time", start.UTC().Format(time.RFC3339)).
			WithDetail("end_time", end.UTC().Format(time.RFC3339))
	}
	return nil
}

// TeamValidator validates team-related domain rules
type TeamValidator struct {
	nameMinLength int
	nameMaxLength int
	descMaxLength int
}

// NewTeamValidator creates a new team validator with default rules
func NewTeamValidator() *TeamValidator {
	cfg := config.DefaultDomainConfig()
	return &TeamValidator{
		nameMinLength: cfg.MinTeamNameLength,
		nameMaxLength: cfg.MaxTeamNameLength,
		descMaxLength: cfg.MaxDescriptionLength,
	}
}

// ValidateName validates the team name
func (v *TeamValidator) ValidateName(name string) error {
	length := utf8.RuneCountInString(name)

	if length < v.nameMinLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TEAM_NAME_REQUIRED",
			"Team name is required",
		).WithDetail("field", "name")
	}

	if length > v.nameMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TEAM_NAME_TOO_LONG",
			"Team name exceeds maximum length",
		).WithDetail("field", "name").
			WithDetail("actual_length", length).
			WithDetail("max_length", v.nameMaxLength)
	}

	return nil
}

// ValidateDescription validates the team description
func (v *TeamValidator) ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > v.descMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TEAM_DESCRIPTION_TOO_LONG",
			"Team description exceeds maximum length",
		).WithDetail("field", "description").
			WithDetail("max_length", v.descMaxLength)
	}
	return nil
}

// UserValidator validates user-related domain rules
type UserValidator struct {
	nameMaxLength int
}

// NewUserValidator creates a new user validator with default rules
func NewUserValidator() *UserValidator {
	return &UserValidator{
		nameMaxLength: config.DefaultDomainConfig().MaxUserNameLength,
	}
}

// ValidateEmail validates an email address format
func (v *UserValidator) ValidateEmail(email string) error {
	if _, err := valueobjects.NewEmail(email); err != nil {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_EMAIL",
			"Email address is invalid",
		).WithDetail("field", "email").WithCause(err)
	}
	return nil
}

// ValidateName validates the user display name
func (v *UserValidator) ValidateName(name string) error {
	length := utf8.RuneCountInString(name)

	if length == 0 {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"USER_NAME_REQUIRED",
			"User name is required",
		).WithDetail("field", "name")
	}

	if length > v.nameMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"USER_NAME_TOO_LONG",
			"User name exceeds maximum length",
		).WithDetail("field", "name").
			WithDetail("max_length", v.nameMaxLength)
	}

	return nil
}

// MemberValidator validates membership-related domain rules
type MemberValidator struct{}

// NewMemberValidator creates a new member validator
func NewMemberValidator() *MemberValidator {
	return &MemberValidator{}
}

// ValidateRole validates a role string against the closed enum
func (v *MemberValidator) ValidateRole(role string) error {
	if _, err := valueobjects.NewRoleFromString(role); err != nil {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_ROLE",
			"Role must be one of owner, member, viewer",
		).WithDetail("field", "role").WithDetail("value", role)
	}
	return nil
}
