package entities

import (
	"time"

	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	pkgerrors "teamcal-backend/pkg/errors"
)

// Event is the entity representing a calendar entry scoped to a team.
// The start day of its time range drives the date index key, so any
// reschedule that crosses a day boundary must rewrite that key in the
// same persistence operation.
type Event struct {
	id        valueobjects.EventID
	teamID    valueobjects.TeamID
	createdBy valueobjects.UserID
	details   valueobjects.EventDetails
	category  valueobjects.Category
	color     valueobjects.Color
	span      valueobjects.TimeRange
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewEvent creates a calendar event with full business rule validation.
// Color is optional; a zero Color means the client renders a default.
func NewEvent(
	teamID valueobjects.TeamID,
	createdBy valueobjects.UserID,
	details valueobjects.EventDetails,
	category valueobjects.Category,
	span valueobjects.TimeRange,
	color valueobjects.Color,
) (*Event, error) {
	if teamID.IsZero() {
		return nil, pkgerrors.NewValidationError("team ID cannot be empty")
	}
	if createdBy.IsZero() {
		return nil, pkgerrors.NewValidationError("creator ID cannot be empty")
	}
	if details.IsEmpty() {
		return nil, pkgerrors.NewValidationError("event details cannot be empty")
	}
	if category.IsZero() {
		category = valueobjects.CategoryOther
	}
	if span.IsZero() {
		return nil, pkgerrors.NewValidationError("event time range is required")
	}

	now := time.Now().UTC()
	event := &Event{
		id:        valueobjects.NewEventID(),
		teamID:    teamID,
		createdBy: createdBy,
		details:   details,
		category:  category,
		color:     color,
		span:      span,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	event.addEvent(events.NewEventCreated(event.id, teamID, createdBy, details.Title(), category, span, now))

	return event, nil
}

// ReconstructEvent reconstructs an event from repository data with preserved timestamps
func ReconstructEvent(
	id valueobjects.EventID,
	teamID valueobjects.TeamID,
	createdBy valueobjects.UserID,
	details valueobjects.EventDetails,
	category valueobjects.Category,
	color valueobjects.Color,
	span valueobjects.TimeRange,
	createdAt, updatedAt time.Time,
	version int,
) (*Event, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("event ID cannot be empty")
	}
	if teamID.IsZero() {
		return nil, pkgerrors.NewValidationError("team ID cannot be empty")
	}
	if span.IsZero() {
		return nil, pkgerrors.NewValidationError("event time range is required")
	}

	return &Event{
		id:        id,
		teamID:    teamID,
		createdBy: createdBy,
		details:   details,
		category:  category,
		color:     color,
		span:      span,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the event's unique identifier
func (e *Event) ID() valueobjects.EventID {
	return e.id
}

// TeamID returns the team this event belongs to
func (e *Event) TeamID() valueobjects.TeamID {
	return e.teamID
}

// CreatedBy returns the user who created the event
func (e *Event) CreatedBy() valueobjects.UserID {
	return e.createdBy
}

// Details returns the event's title and description
func (e *Event) Details() valueobjects.EventDetails {
	return e.details
}

// Category returns the event's category
func (e *Event) Category() valueobjects.Category {
	return e.category
}

// Color returns the event's display color; may be zero
func (e *Event) Color() valueobjects.Color {
	return e.color
}

// Span returns the event's time range
func (e *Event) Span() valueobjects.TimeRange {
	return e.span
}

// StartDay returns the UTC calendar day of the start instant as YYYY-MM-DD
func (e *Event) StartDay() string {
	return e.span.StartDay()
}

// Version returns the event's version, bumped on every mutation
func (e *Event) Version() int {
	return e.version
}

// IsOwnedBy reports whether the given user created this event
func (e *Event) IsOwnedBy(userID valueobjects.UserID) bool {
	return e.createdBy.Equals(userID)
}

// UpdateDetails replaces the event's title and description
func (e *Event) UpdateDetails(details valueobjects.EventDetails, by valueobjects.UserID) error {
	if by.IsZero() {
		return pkgerrors.NewValidationError("updating user ID cannot be empty")
	}
	if details.IsEmpty() {
		return pkgerrors.NewValidationError("event details cannot be empty")
	}

	if details.Equals(e.details) {
		return nil // No change needed
	}

	e.details = details
	e.touch()

	e.addEvent(events.NewEventUpdated(e.id, e.teamID, by, []string{"title", "description"}, false, e.updatedAt))

	return nil
}

// Reschedule moves the event to a new time range. When the start day
// changes, the date index key must be rewritten atomically with the
// range fields; the recorded event flags that case for consumers.
func (e *Event) Reschedule(span valueobjects.TimeRange, by valueobjects.UserID) error {
	if by.IsZero() {
		return pkgerrors.NewValidationError("updating user ID cannot be empty")
	}
	if span.IsZero() {
		return pkgerrors.NewValidationError("event time range is required")
	}

	if span.Equals(e.span) {
		return nil // No change needed
	}

	startDayMoved := span.StartDay() != e.span.StartDay()
	e.span = span
	e.touch()

	e.addEvent(events.NewEventUpdated(e.id, e.teamID, by, []string{"startTime", "endTime"}, startDayMoved, e.updatedAt))

	return nil
}

// ChangeCategory updates the event's category
func (e *Event) ChangeCategory(category valueobjects.Category, by valueobjects.UserID) error {
	if by.IsZero() {
		return pkgerrors.NewValidationError("updating user ID cannot be empty")
	}
	if category.IsZero() {
		return pkgerrors.NewValidationError("category cannot be empty")
	}

	if category.Equals(e.category) {
		return nil // No change needed
	}

	e.category = category
	e.touch()

	e.addEvent(events.NewEventUpdated(e.id, e.teamID, by, []string{"category"}, false, e.updatedAt))

	return nil
}

// ChangeColor updates the event's display color
func (e *Event) ChangeColor(color valueobjects.Color, by valueobjects.UserID) error {
	if by.IsZero() {
		return pkgerrors.NewValidationError("updating user ID cannot be empty")
	}

	if color.Equals(e.color) {
		return nil // No change needed
	}

	e.color = color
	e.touch()

	e.addEvent(events.NewEventUpdated(e.id, e.teamID, by, []string{"color"}, false, e.updatedAt))

	return nil
}

// CreatedAt returns when the event was created
func (e *Event) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the event was last updated
func (e *Event) UpdatedAt() time.Time {
	return e.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (e *Event) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (e *Event) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (e *Event) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}

// touch advances the mutation timestamp and version together
func (e *Event) touch() {
	e.updatedAt = time.Now().UTC()
	e.version++
}
