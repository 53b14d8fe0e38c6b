package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/validators"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	"teamcal-backend/domain/permissions"
	pkgerrors "teamcal-backend/pkg/errors"
)

// EventService manages calendar events within a team scope
type EventService struct {
	events     ports.EventStore
	outbox     ports.DomainEventStore
	authorizer *Authorizer
	validator  *validators.EventValidator
	sanitizer  *validators.Sanitizer
	cfg        *config.DomainConfig
	logger     *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(
	eventStore ports.EventStore,
	outbox ports.DomainEventStore,
	authorizer *Authorizer,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *EventService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &EventService{
		events:     eventStore,
		outbox:     outbox,
		authorizer: authorizer,
		validator:  validators.NewEventValidatorWithConfig(cfg),
		sanitizer:  validators.NewSanitizer(),
		cfg:        cfg,
		logger:     logger,
	}
}

// Create adds an event to the team calendar. Owners and members may
// create; viewers may not.
func (s *EventService) Create(ctx context.Context, teamID, actorID string, input validators.EventCreateInput) (*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionCreateEvent); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateCreate(input); err != nil {
		return nil, err
	}
	input = s.sanitizer.EventCreate(input)

	details, err := valueobjects.NewEventDetailsWithConfig(input.Title, input.Description, s.cfg)
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_EVENT_DETAILS",
			"Event title or description is invalid",
		).WithCause(err)
	}

	var category valueobjects.Category
	if input.Category != "" {
		category, err = valueobjects.NewCategoryFromString(input.Category)
		if err != nil {
			return nil, invalidCategory(input.Category, err)
		}
	}

	var color valueobjects.Color
	if input.Color != "" {
		color, err = valueobjects.NewColor(input.Color)
		if err != nil {
			return nil, invalidColor(input.Color, err)
		}
	}

	span, err := valueobjects.NewTimeRange(input.StartTime, input.EndTime)
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"Event start must be before its end",
		).WithCause(err)
	}

	event, err := entities.NewEvent(tid, uid, details, category, span, color)
	if err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.saveDomainEvents(ctx, teamID, event.GetUncommittedEvents())
	event.MarkEventsAsCommitted()

	s.logger.Info("Event created",
		zap.String("team_id", teamID),
		zap.String("event_id", event.ID().String()),
		zap.String("created_by", actorID),
		zap.String("start_day", event.StartDay()),
	)
	return event, nil
}

// Get returns one event, any member may look
func (s *EventService) Get(ctx context.Context, teamID, eventID, actorID string) (*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); err != nil {
		return nil, err
	}

	eid, err := valueobjects.NewEventIDFromString(eventID)
	if err != nil {
		return nil, malformedID("eventId", err)
	}

	event, err := s.events.FindByID(ctx, tid, eid)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventNotFound(teamID, eventID)
	}
	return event, nil
}

// Update applies a partial event update. Owners may edit anything;
// members only events they created; viewers nothing.
func (s *EventService) Update(ctx context.Context, teamID, eventID, actorID string, input validators.EventUpdateInput) (*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	eid, err := valueobjects.NewEventIDFromString(eventID)
	if err != nil {
		return nil, malformedID("eventId", err)
	}

	// The event is loaded before authorization because the ownership
	// override needs the creator ID
	event, err := s.events.FindByID(ctx, tid, eid)
	if err != nil {
		return nil, err
	}
	if event == nil {
		// Only resolved members learn whether the event exists
		if _, authErr := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); authErr != nil {
			return nil, authErr
		}
		return nil, eventNotFound(teamID, eventID)
	}

	if _, err := s.authorizer.RequireOnEvent(ctx, tid, uid, permissions.PermissionEditEvent, event.CreatedBy()); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(input); err != nil {
		return nil, err
	}
	input = s.sanitizer.EventUpdate(input)

	if input.Title != nil || input.Description != nil {
		title := event.Details().Title()
		description := event.Details().Description()
		if input.Title != nil {
			title = *input.Title
		}
		if input.Description != nil {
			description = *input.Description
		}
		details, err := valueobjects.NewEventDetailsWithConfig(title, description, s.cfg)
		if err != nil {
			return nil, pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"INVALID_EVENT_DETAILS",
				"Event title or description is invalid",
			).WithCause(err)
		}
		if err := event.UpdateDetails(details, uid); err != nil {
			return nil, err
		}
	}

	if input.StartTime != nil || input.EndTime != nil {
		start := event.Span().Start()
		end := event.Span().End()
		if input.StartTime != nil {
			start = *input.StartTime
		}
		if input.EndTime != nil {
			end = *input.EndTime
		}
		// The ordering rule holds on the merged span, not just the
		// fields present in the payload
		span, err := valueobjects.NewTimeRange(start, end)
		if err != nil {
			return nil, pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"INVALID_TIME_RANGE",
				"Event start must be before its end",
			).WithCause(err)
		}
		if err := event.Reschedule(span, uid); err != nil {
			return nil, err
		}
	}

	if input.Category != nil {
		category, err := valueobjects.NewCategoryFromString(*input.Category)
		if err != nil {
			return nil, invalidCategory(*input.Category, err)
		}
		if err := event.ChangeCategory(category, uid); err != nil {
			return nil, err
		}
	}

	if input.Color != nil {
		color, err := valueobjects.NewColor(*input.Color)
		if err != nil {
			return nil, invalidColor(*input.Color, err)
		}
		if err := event.ChangeColor(color, uid); err != nil {
			return nil, err
		}
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.saveDomainEvents(ctx, teamID, event.GetUncommittedEvents())
	event.MarkEventsAsCommitted()

	s.logger.Info("Event updated",
		zap.String("team_id", teamID),
		zap.String("event_id", eventID),
		zap.String("updated_by", actorID),
	)
	return event, nil
}

// Delete removes an event. Owners may delete anything; members only
// events they created.
func (s *EventService) Delete(ctx context.Context, teamID, eventID, actorID string) error {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return err
	}
	eid, err := valueobjects.NewEventIDFromString(eventID)
	if err != nil {
		return malformedID("eventId", err)
	}

	event, err := s.events.FindByID(ctx, tid, eid)
	if err != nil {
		return err
	}
	if event == nil {
		if _, authErr := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); authErr != nil {
			return authErr
		}
		return eventNotFound(teamID, eventID)
	}

	if _, err := s.authorizer.RequireOnEvent(ctx, tid, uid, permissions.PermissionDeleteEvent, event.CreatedBy()); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, tid, eid); err != nil {
		return err
	}

	s.saveDomainEvents(ctx, teamID, []events.DomainEvent{
		events.NewEventDeleted(eid, tid, uid, time.Now().UTC()),
	})

	s.logger.Info("Event deleted",
		zap.String("team_id", teamID),
		zap.String("event_id", eventID),
		zap.String("deleted_by", actorID),
	)
	return nil
}

// ListByTeam returns every event on the team calendar
func (s *EventService) ListByTeam(ctx context.Context, teamID, actorID string) ([]*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); err != nil {
		return nil, err
	}
	return s.events.FindByTeam(ctx, tid)
}

// ListByCategory returns the team's events in one category
func (s *EventService) ListByCategory(ctx context.Context, teamID, actorID, rawCategory string) ([]*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); err != nil {
		return nil, err
	}

	category, err := valueobjects.NewCategoryFromString(rawCategory)
	if err != nil {
		return nil, invalidCategory(rawCategory, err)
	}
	return s.events.FindByCategory(ctx, tid, category)
}

// ListByCreator returns the team's events created by one user
func (s *EventService) ListByCreator(ctx context.Context, teamID, actorID, creatorID string) ([]*entities.Event, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); err != nil {
		return nil, err
	}

	cid, err := valueobjects.NewUserIDFromString(creatorID)
	if err != nil {
		return nil, malformedID("creatorId", err)
	}
	return s.events.FindByCreator(ctx, tid, cid)
}

func (s *EventService) saveDomainEvents(ctx context.Context, teamID string, domainEvents []events.DomainEvent) {
	if len(domainEvents) == 0 {
		return
	}
	if err := s.outbox.SaveEvents(ctx, domainEvents); err != nil {
		s.logger.Warn("Failed to store domain events",
			zap.Error(err),
			zap.String("team_id", teamID),
		)
	}
}

func invalidCategory(category string, cause error) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		"INVALID_CATEGORY",
		"Category must be one of meeting, deadline, reminder, social, other",
	).WithDetail("category", category).WithCause(cause)
}

func invalidColor(color string, cause error) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		"INVALID_COLOR",
		"Color must be a hex value like #1A2B3C",
	).WithDetail("color", color).WithCause(cause)
}

func eventNotFound(teamID, eventID string) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainNotFoundError,
		"EVENT_NOT_FOUND",
		"The requested event does not exist",
	).WithDetail("teamId", teamID).WithDetail("eventId", eventID)
}
