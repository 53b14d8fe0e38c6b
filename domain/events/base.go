package events

import (
	"time"

	"teamcal-backend/domain/core/valueobjects"
)

// SourceBackend identifies this service as the origin of published events
const SourceBackend = "teamcal.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// User Events

// UserCreated is raised when a new user is registered
type UserCreated struct {
	BaseEvent
	UserID valueobjects.UserID `json:"user_id"`
	Email  valueobjects.Email  `json:"email"`
	Name   string              `json:"name"`
}

// NewUserCreated creates a UserCreated event
func NewUserCreated(userID valueobjects.UserID, email valueobjects.Email, name string, timestamp time.Time) UserCreated {
	return UserCreated{
		BaseEvent: BaseEvent{
			AggregateID: userID.String(),
			EventType:   "user.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID: userID,
		Email:  email,
		Name:   name,
	}
}

// Team Events

// TeamCreated is raised when a new team is created
type TeamCreated struct {
	BaseEvent
	TeamID  valueobjects.TeamID `json:"team_id"`
	OwnerID valueobjects.UserID `json:"owner_id"`
	Name    string              `json:"name"`
}

// NewTeamCreated creates a TeamCreated event
func NewTeamCreated(teamID valueobjects.TeamID, ownerID valueobjects.UserID, name string, timestamp time.Time) TeamCreated {
	return TeamCreated{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "team.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID:  teamID,
		OwnerID: ownerID,
		Name:    name,
	}
}

// TeamDeleted is raised when a team row is removed. Member and event rows
// are not cascaded, so consumers may still observe rows scoped to this team.
type TeamDeleted struct {
	BaseEvent
	TeamID valueobjects.TeamID `json:"team_id"`
}

// NewTeamDeleted creates a TeamDeleted event
func NewTeamDeleted(teamID valueobjects.TeamID, timestamp time.Time) TeamDeleted {
	return TeamDeleted{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "team.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID: teamID,
	}
}

// SubscriptionKeyRotated is raised when a team's subscription key is rotated.
// The key itself never rides on the event.
type SubscriptionKeyRotated struct {
	BaseEvent
	TeamID    valueobjects.TeamID `json:"team_id"`
	RotatedBy valueobjects.UserID `json:"rotated_by"`
}

// NewSubscriptionKeyRotated creates a SubscriptionKeyRotated event
func NewSubscriptionKeyRotated(teamID valueobjects.TeamID, rotatedBy valueobjects.UserID, timestamp time.Time) SubscriptionKeyRotated {
	return SubscriptionKeyRotated{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "team.subscription_key_rotated",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID:    teamID,
		RotatedBy: rotatedBy,
	}
}

// Membership Events

// MemberInvited is raised when a user is added to a team
type MemberInvited struct {
	BaseEvent
	TeamID    valueobjects.TeamID `json:"team_id"`
	UserID    valueobjects.UserID `json:"user_id"`
	Role      valueobjects.Role   `json:"role"`
	InvitedBy valueobjects.UserID `json:"invited_by"`
}

// NewMemberInvited creates a MemberInvited event
func NewMemberInvited(teamID valueobjects.TeamID, userID valueobjects.UserID, role valueobjects.Role, invitedBy valueobjects.UserID, timestamp time.Time) MemberInvited {
	return MemberInvited{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "member.invited",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		InvitedBy: invitedBy,
	}
}

// MemberRoleChanged is raised when a member's role is updated
type MemberRoleChanged struct {
	BaseEvent
	TeamID  valueobjects.TeamID `json:"team_id"`
	UserID  valueobjects.UserID `json:"user_id"`
	OldRole valueobjects.Role   `json:"old_role"`
	NewRole valueobjects.Role   `json:"new_role"`
}

// NewMemberRoleChanged creates a MemberRoleChanged event
func NewMemberRoleChanged(teamID valueobjects.TeamID, userID valueobjects.UserID, oldRole, newRole valueobjects.Role, timestamp time.Time) MemberRoleChanged {
	return MemberRoleChanged{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "member.role_changed",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID:  teamID,
		UserID:  userID,
		OldRole: oldRole,
		NewRole: newRole,
	}
}

// MemberRemoved is raised when a user is removed from a team
type MemberRemoved struct {
	BaseEvent
	TeamID    valueobjects.TeamID `json:"team_id"`
	UserID    valueobjects.UserID `json:"user_id"`
	RemovedBy valueobjects.UserID `json:"removed_by"`
}

// NewMemberRemoved creates a MemberRemoved event
func NewMemberRemoved(teamID valueobjects.TeamID, userID, removedBy valueobjects.UserID, timestamp time.Time) MemberRemoved {
	return MemberRemoved{
		BaseEvent: BaseEvent{
			AggregateID: teamID.String(),
			EventType:   "member.removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		TeamID:    teamID,
		UserID:    userID,
		RemovedBy: removedBy,
	}
}

// Calendar Event Events

// EventCreated is raised when a calendar event is created
type EventCreated struct {
	BaseEvent
	EventID   valueobjects.EventID  `json:"event_id"`
	TeamID    valueobjects.TeamID   `json:"team_id"`
	CreatedBy valueobjects.UserID   `json:"created_by"`
	Title     string                `json:"title"`
	Category  valueobjects.Category `json:"category"`
	StartTime time.Time             `json:"start_time"`
	EndTime   time.Time             `json:"end_time"`
}

// NewEventCreated creates an EventCreated event
func NewEventCreated(eventID valueobjects.EventID, teamID valueobjects.TeamID, createdBy valueobjects.UserID, title string, category valueobjects.Category, span valueobjects.TimeRange, timestamp time.Time) EventCreated {
	return EventCreated{
		BaseEvent: BaseEvent{
			AggregateID: eventID.String(),
			EventType:   "event.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		EventID:   eventID,
		TeamID:    teamID,
		CreatedBy: createdBy,
		Title:     title,
		Category:  category,
		StartTime: span.Start(),
		EndTime:   span.End(),
	}
}

// EventUpdated is raised when a calendar event is modified
type EventUpdated struct {
	BaseEvent
	EventID       valueobjects.EventID `json:"event_id"`
	TeamID        valueobjects.TeamID  `json:"team_id"`
	UpdatedBy     valueobjects.UserID  `json:"updated_by"`
	ChangedFields []string             `json:"changed_fields"`
	StartDayMoved bool                 `json:"start_day_moved"`
}

// NewEventUpdated creates an EventUpdated event
func NewEventUpdated(eventID valueobjects.EventID, teamID valueobjects.TeamID, updatedBy valueobjects.UserID, changedFields []string, startDayMoved bool, timestamp time.Time) EventUpdated {
	return EventUpdated{
		BaseEvent: BaseEvent{
			AggregateID: eventID.String(),
			EventType:   "event.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		EventID:       eventID,
		TeamID:        teamID,
		UpdatedBy:     updatedBy,
		ChangedFields: changedFields,
		StartDayMoved: startDayMoved,
	}
}

// EventDeleted is raised when a calendar event is removed
type EventDeleted struct {
	BaseEvent
	EventID   valueobjects.EventID `json:"event_id"`
	TeamID    valueobjects.TeamID  `json:"team_id"`
	DeletedBy valueobjects.UserID  `json:"deleted_by"`
}

// NewEventDeleted creates an EventDeleted event
func NewEventDeleted(eventID valueobjects.EventID, teamID valueobjects.TeamID, deletedBy valueobjects.UserID, timestamp time.Time) EventDeleted {
	return EventDeleted{
		BaseEvent: BaseEvent{
			AggregateID: eventID.String(),
			EventType:   "event.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		EventID:   eventID,
		TeamID:    teamID,
		DeletedBy: deletedBy,
	}
}
