package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	pkgerrors "teamcal-backend/pkg/errors"
)

// User is the entity representing a registered account.
// Email is globally unique across users; uniqueness is enforced at the
// repository layer via an index pre-check, not here.
type User struct {
	// Private fields ensure encapsulation
	id        valueobjects.UserID
	email     valueobjects.Email
	name      string
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// NewUser creates a new user with full business rule validation
func NewUser(email valueobjects.Email, name string) (*User, error) {
	return NewUserWithConfig(email, name, config.DefaultDomainConfig())
}

// NewUserWithConfig creates a new user with validation and configuration
func NewUserWithConfig(email valueobjects.Email, name string, cfg *config.DomainConfig) (*User, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if email.IsZero() {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxUserNameLength {
		return nil, pkgerrors.NewValidationError("name exceeds maximum length")
	}

	now := time.Now().UTC()
	user := &User{
		id:        valueobjects.NewUserID(),
		email:     email,
		name:      name,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	user.addEvent(events.NewUserCreated(user.id, email, name, now))

	return user, nil
}

// ReconstructUser reconstructs a user from repository data with preserved timestamps
func ReconstructUser(
	id valueobjects.UserID,
	email valueobjects.Email,
	name string,
	createdAt, updatedAt time.Time,
	version int,
) (*User, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if email.IsZero() {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}

	return &User{
		id:        id,
		email:     email,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the user's unique identifier
func (u *User) ID() valueobjects.UserID {
	return u.id
}

// Email returns the user's normalized email address
func (u *User) Email() valueobjects.Email {
	return u.email
}

// Name returns the user's display name
func (u *User) Name() string {
	return u.name
}

// Version returns the user's version, bumped on every mutation
func (u *User) Version() int {
	return u.version
}

// Rename updates the user's display name with validation
func (u *User) Rename(name string) error {
	return u.RenameWithConfig(name, config.DefaultDomainConfig())
}

// RenameWithConfig updates the user's display name with configuration
func (u *User) RenameWithConfig(name string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxUserNameLength {
		return pkgerrors.NewValidationError("name exceeds maximum length")
	}

	if name == u.name {
		return nil // No change needed
	}

	u.name = name
	u.updatedAt = time.Now().UTC()
	u.version++

	return nil
}

// ChangeEmail replaces the user's email address. The repository re-checks
// global uniqueness before persisting.
func (u *User) ChangeEmail(email valueobjects.Email) error {
	if email.IsZero() {
		return pkgerrors.NewValidationError("email cannot be empty")
	}

	if email.Equals(u.email) {
		return nil // No change needed
	}

	u.email = email
	u.updatedAt = time.Now().UTC()
	u.version++

	return nil
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last updated
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (u *User) GetUncommittedEvents() []events.DomainEvent {
	return u.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (u *User) MarkEventsAsCommitted() {
	u.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (u *User) addEvent(event events.DomainEvent) {
	u.events = append(u.events, event)
}
