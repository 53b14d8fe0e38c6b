package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	pkgerrors "teamcal-backend/pkg/errors"
)

// Team is the entity representing a calendar tenant. Every event and
// membership row is scoped to exactly one team. The team carries a
// rotating subscription key used for read-only calendar feeds.
type Team struct {
	id              valueobjects.TeamID
	name            string
	description     string
	ownerID         valueobjects.UserID
	subscriptionKey string
	createdAt       time.Time
	updatedAt       time.Time
	version         int

	events []events.DomainEvent
}

// NewTeam creates a new team with full business rule validation
func NewTeam(name, description string, ownerID valueobjects.UserID) (*Team, error) {
	return NewTeamWithConfig(name, description, ownerID, config.DefaultDomainConfig())
}

// NewTeamWithConfig creates a new team with validation and configuration
func NewTeamWithConfig(name, description string, ownerID valueobjects.UserID, cfg *config.DomainConfig) (*Team, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("owner ID cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("team name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxTeamNameLength {
		return nil, pkgerrors.NewValidationError("team name exceeds maximum length")
	}

	now := time.Now().UTC()
	team := &Team{
		id:              valueobjects.NewTeamID(),
		name:            name,
		description:     strings.TrimSpace(description),
		ownerID:         ownerID,
		subscriptionKey: newSubscriptionKey(),
		createdAt:       now,
		updatedAt:       now,
		version:         1,
		events:          []events.DomainEvent{},
	}

	team.addEvent(events.NewTeamCreated(team.id, ownerID, name, now))

	return team, nil
}

// ReconstructTeam reconstructs a team from repository data with preserved timestamps
func ReconstructTeam(
	id valueobjects.TeamID,
	name, description string,
	ownerID valueobjects.UserID,
	subscriptionKey string,
	createdAt, updatedAt time.Time,
	version int,
) (*Team, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("team ID cannot be empty")
	}
	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("owner ID cannot be empty")
	}

	return &Team{
		id:              id,
		name:            name,
		description:     description,
		ownerID:         ownerID,
		subscriptionKey: subscriptionKey,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		version:         version,
		events:          []events.DomainEvent{},
	}, nil
}

// ID returns the team's unique identifier
func (t *Team) ID() valueobjects.TeamID {
	return t.id
}

// Name returns the team's display name
func (t *Team) Name() string {
	return t.name
}

// Description returns the team's description
func (t *Team) Description() string {
	return t.description
}

// OwnerID returns the ID of the user who created the team
func (t *Team) OwnerID() valueobjects.UserID {
	return t.ownerID
}

// SubscriptionKey returns the current calendar feed key
func (t *Team) SubscriptionKey() string {
	return t.subscriptionKey
}

// Version returns the team's version, bumped on every mutation
func (t *Team) Version() int {
	return t.version
}

// Rename updates the team's name with validation
func (t *Team) Rename(name string) error {
	return t.RenameWithConfig(name, config.DefaultDomainConfig())
}

// RenameWithConfig updates the team's name with configuration
func (t *Team) RenameWithConfig(name string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("team name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxTeamNameLength {
		return pkgerrors.NewValidationError("team name exceeds maximum length")
	}

	if name == t.name {
		return nil // No change needed
	}

	t.name = name
	t.updatedAt = time.Now().UTC()
	t.version++

	return nil
}

// UpdateDescription replaces the team's description
func (t *Team) UpdateDescription(description string) {
	description = strings.TrimSpace(description)
	if description == t.description {
		return
	}

	t.description = description
	t.updatedAt = time.Now().UTC()
	t.version++
}

// RotateSubscriptionKey replaces the calendar feed key with a fresh one.
// Existing feed URLs stop working immediately.
func (t *Team) RotateSubscriptionKey(rotatedBy valueobjects.UserID) error {
	if rotatedBy.IsZero() {
		return pkgerrors.NewValidationError("rotating user ID cannot be empty")
	}

	t.subscriptionKey = newSubscriptionKey()
	t.updatedAt = time.Now().UTC()
	t.version++

	t.addEvent(events.NewSubscriptionKeyRotated(t.id, rotatedBy, t.updatedAt))

	return nil
}

// CreatedAt returns when the team was created
func (t *Team) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the team was last updated
func (t *Team) UpdatedAt() time.Time {
	return t.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (t *Team) GetUncommittedEvents() []events.DomainEvent {
	return t.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (t *Team) MarkEventsAsCommitted() {
	t.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (t *Team) addEvent(event events.DomainEvent) {
	t.events = append(t.events, event)
}

// newSubscriptionKey generates an opaque feed key
func newSubscriptionKey() string {
	return uuid.New().String()
}
