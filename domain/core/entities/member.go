package entities

import (
	"time"

	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	pkgerrors "teamcal-backend/pkg/errors"
)

// TeamMember is the join entity binding a user to a team with a role.
// Its existence is the sole source of truth for team membership, so
// authorization decisions load this row and nothing else.
type TeamMember struct {
	teamID    valueobjects.TeamID
	userID    valueobjects.UserID
	role      valueobjects.Role
	invitedBy valueobjects.UserID
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewTeamMember creates a membership with full business rule validation
func NewTeamMember(teamID valueobjects.TeamID, userID valueobjects.UserID, role valueobjects.Role, invitedBy valueobjects.UserID) (*TeamMember, error) {
	if teamID.IsZero() {
		return nil, pkgerrors.NewValidationError("team ID cannot be empty")
	}
	if userID.IsZero() {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if role.IsZero() {
		return nil, pkgerrors.NewValidationError("role cannot be empty")
	}

	now := time.Now().UTC()
	member := &TeamMember{
		teamID:    teamID,
		userID:    userID,
		role:      role,
		invitedBy: invitedBy,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	member.addEvent(events.NewMemberInvited(teamID, userID, role, invitedBy, now))

	return member, nil
}

// ReconstructTeamMember reconstructs a membership from repository data
func ReconstructTeamMember(
	teamID valueobjects.TeamID,
	userID valueobjects.UserID,
	role valueobjects.Role,
	invitedBy valueobjects.UserID,
	createdAt, updatedAt time.Time,
	version int,
) (*TeamMember, error) {
	if teamID.IsZero() {
		return nil, pkgerrors.NewValidationError("team ID cannot be empty")
	}
	if userID.IsZero() {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if role.IsZero() {
		return nil, pkgerrors.NewValidationError("role cannot be empty")
	}

	return &TeamMember{
		teamID:    teamID,
		userID:    userID,
		role:      role,
		invitedBy: invitedBy,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// TeamID returns the team this membership belongs to
func (m *TeamMember) TeamID() valueobjects.TeamID {
	return m.teamID
}

// UserID returns the member's user ID
func (m *TeamMember) UserID() valueobjects.UserID {
	return m.userID
}

// Role returns the member's role within the team
func (m *TeamMember) Role() valueobjects.Role {
	return m.role
}

// InvitedBy returns the user who created this membership
func (m *TeamMember) InvitedBy() valueobjects.UserID {
	return m.invitedBy
}

// Version returns the membership's version, bumped on every mutation
func (m *TeamMember) Version() int {
	return m.version
}

// ChangeRole updates the member's role
func (m *TeamMember) ChangeRole(newRole valueobjects.Role) error {
	if newRole.IsZero() {
		return pkgerrors.NewValidationError("role cannot be empty")
	}

	if newRole.Equals(m.role) {
		return nil // No change needed
	}

	oldRole := m.role
	m.role = newRole
	m.updatedAt = time.Now().UTC()
	m.version++

	m.addEvent(events.NewMemberRoleChanged(m.teamID, m.userID, oldRole, newRole, m.updatedAt))

	return nil
}

// HasRole reports whether the member's role satisfies the required role
func (m *TeamMember) HasRole(required valueobjects.Role) bool {
	return m.role.HasRole(required)
}

// CreatedAt returns when the membership was created
func (m *TeamMember) CreatedAt() time.Time {
	return m.createdAt
}

// UpdatedAt returns when the membership was last updated
func (m *TeamMember) UpdatedAt() time.Time {
	return m.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (m *TeamMember) GetUncommittedEvents() []events.DomainEvent {
	return m.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (m *TeamMember) MarkEventsAsCommitted() {
	m.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (m *TeamMember) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}
