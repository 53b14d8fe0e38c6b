package ports

import (
	"context"
	"time"

	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
)

// UserStore defines the interface for user persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type UserStore interface {
	// Create persists a new user; fails with a duplicate error when the
	// key already exists or the email is already registered
	Create(ctx context.Context, user *entities.User) error

	// FindByID retrieves a user by ID, nil when absent
	FindByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error)

	// FindByEmail retrieves a user by normalized email, nil when absent
	FindByEmail(ctx context.Context, email valueobjects.Email) (*entities.User, error)

	// Update persists field-level changes to an existing user; fails with
	// a not-found error when the row does not exist
	Update(ctx context.Context, user *entities.User) error

	// Delete removes a user; fails with a not-found error when absent
	Delete(ctx context.Context, id valueobjects.UserID) error
}

// TeamStore defines the interface for team persistence
type TeamStore interface {
	// Create persists a new team
	Create(ctx context.Context, team *entities.Team) error

	// FindByID retrieves a team by ID, nil when absent
	FindByID(ctx context.Context, id valueobjects.TeamID) (*entities.Team, error)

	// Update persists field-level changes to an existing team
	Update(ctx context.Context, team *entities.Team) error

	// Delete removes the team row only. Member and event rows scoped to
	// the team are deliberately left in place.
	Delete(ctx context.Context, id valueobjects.TeamID) error
}

// MemberStore defines the interface for team membership persistence
type MemberStore interface {
	// Create persists a new membership; fails with a duplicate error when
	// the user is already a member of the team
	Create(ctx context.Context, member *entities.TeamMember) error

	// FindByTeamAndUser retrieves a single membership, nil when absent
	FindByTeamAndUser(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) (*entities.TeamMember, error)

	// FindByTeam retrieves every membership of a team
	FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.TeamMember, error)

	// FindByUser retrieves every membership a user holds, across teams
	FindByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.TeamMember, error)

	// Update persists field-level changes to an existing membership
	Update(ctx context.Context, member *entities.TeamMember) error

	// Delete removes a membership; fails with a not-found error when absent
	Delete(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) error
}

// DateRangeQuery describes a calendar window. Start and end are inclusive
// calendar days in UTC; a zero TeamID means no team filter.
type DateRangeQuery struct {
	Start  time.Time
	End    time.Time
	TeamID valueobjects.TeamID
}

// EventStore defines the interface for calendar event persistence
type EventStore interface {
	// Create persists a new event
	Create(ctx context.Context, event *entities.Event) error

	// FindByID retrieves an event within a team, nil when absent
	FindByID(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) (*entities.Event, error)

	// FindByTeam retrieves every event of a team, unordered
	FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.Event, error)

	// FindByCategory retrieves a team's events matching the category, unordered
	FindByCategory(ctx context.Context, teamID valueobjects.TeamID, category valueobjects.Category) ([]*entities.Event, error)

	// FindByCreator retrieves a team's events created by the user, unordered
	FindByCreator(ctx context.Context, teamID valueobjects.TeamID, creatorID valueobjects.UserID) ([]*entities.Event, error)

	// FindByDateRange retrieves events whose start day falls within the
	// inclusive range, one index lookup per day executed concurrently,
	// optionally filtered to a single team. Results are unordered.
	FindByDateRange(ctx context.Context, query DateRangeQuery) ([]*entities.Event, error)

	// Update persists field-level changes to an existing event. When the
	// start day changed, the date index key is rewritten in the same
	// store operation as the field changes.
	Update(ctx context.Context, event *entities.Event) error

	// Delete removes an event; fails with a not-found error when absent
	Delete(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) error
}

// DomainEventStore defines the interface for the transactional event log
type DomainEventStore interface {
	// SaveEvents persists domain events for later publication
	SaveEvents(ctx context.Context, events []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate in timestamp order
	GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error)

	// GetPendingEvents retrieves events not yet published downstream
	GetPendingEvents(ctx context.Context, limit int) ([]StoredEvent, error)

	// MarkPublished flags a stored event as published
	MarkPublished(ctx context.Context, event StoredEvent) error

	// MarkFailed records a failed publish attempt; the event stays
	// eligible for retry until the attempt budget runs out
	MarkFailed(ctx context.Context, event StoredEvent, reason string) error

	// DeleteEvents removes all events for an aggregate
	DeleteEvents(ctx context.Context, aggregateID string) error
}

// StoredEvent is a persisted domain event awaiting publication
type StoredEvent struct {
	EventID     string
	AggregateID string
	EventType   string
	Payload     []byte
	Timestamp   time.Time
	Status      string
	Attempts    int
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Connection represents a live notification channel for a user
type Connection struct {
	ConnectionID string
	UserID       string
	ConnectedAt  time.Time
	TTL          int64
}

// ConnectionStore defines the interface for live connection persistence
type ConnectionStore interface {
	// Save registers a connection
	Save(ctx context.Context, conn Connection) error

	// FindByUser retrieves all active connections for a user
	FindByUser(ctx context.Context, userID valueobjects.UserID) ([]Connection, error)

	// Delete removes a connection, typically after the peer goes away
	Delete(ctx context.Context, connectionID string) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
