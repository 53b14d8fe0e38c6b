package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// EventStore is an in-memory EventStore. Date-range reads apply the same
// range cap as the table-backed store so callers see one behavior.
type EventStore struct {
	mu           sync.RWMutex
	events       map[string]map[string]*entities.Event // teamID -> eventID -> event
	maxRangeDays int
}

// NewEventStore creates an empty in-memory event store
func NewEventStore(cfg *config.DomainConfig) *EventStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &EventStore{
		events:       make(map[string]map[string]*entities.Event),
		maxRangeDays: cfg.MaxRangeDays,
	}
}

// Create stores a snapshot of the event, failing on a duplicate ID
func (s *EventStore) Create(ctx context.Context, event *entities.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := event.TeamID().String()
	eventID := event.ID().String()
	if _, exists := s.events[teamID][eventID]; exists {
		return errors.NewDomainError(
			errors.DomainConflictError,
			"EVENT_EXISTS",
			"An event with this identifier already exists",
		).WithDetail("teamId", teamID).WithDetail("eventId", eventID)
	}

	snapshot, err := cloneEvent(event)
	if err != nil {
		return err
	}
	if s.events[teamID] == nil {
		s.events[teamID] = make(map[string]*entities.Event)
	}
	s.events[teamID][eventID] = snapshot
	return nil
}

// FindByID returns a snapshot of the event, nil when absent
func (s *EventStore) FindByID(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) (*entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[teamID.String()][eventID.String()]
	if !ok {
		return nil, nil
	}
	return cloneEvent(event)
}

// FindByTeam returns snapshots of every event on the team
func (s *EventStore) FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.Event, error) {
	return s.collect(teamID, func(*entities.Event) bool { return true })
}

// FindByCategory returns the team's events in the given category
func (s *EventStore) FindByCategory(ctx context.Context, teamID valueobjects.TeamID, category valueobjects.Category) ([]*entities.Event, error) {
	return s.collect(teamID, func(e *entities.Event) bool {
		return e.Category().Equals(category)
	})
}

// FindByCreator returns the team's events created by the given user
func (s *EventStore) FindByCreator(ctx context.Context, teamID valueobjects.TeamID, creatorID valueobjects.UserID) ([]*entities.Event, error) {
	if creatorID.IsZero() {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			"Creator identifier cannot be empty",
		)
	}
	return s.collect(teamID, func(e *entities.Event) bool {
		return e.CreatedBy().Equals(creatorID)
	})
}

// FindByDateRange returns events whose start day falls inside the
// inclusive range, optionally scoped to one team
func (s *EventStore) FindByDateRange(ctx context.Context, query ports.DateRangeQuery) ([]*entities.Event, error) {
	days, err := utils.DaysInRange(query.Start, query.End)
	if err != nil {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"The requested date range is invalid",
		).WithCause(err)
	}
	if len(days) > s.maxRangeDays {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"RANGE_TOO_WIDE",
			"The requested date range spans too many days",
		).WithDetail("days", len(days)).WithDetail("max_days", s.maxRangeDays)
	}

	wanted := make(map[string]struct{}, len(days))
	for _, day := range days {
		wanted[day] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.Event
	for teamID, team := range s.events {
		if !query.TeamID.IsZero() && teamID != query.TeamID.String() {
			continue
		}
		for _, event := range team {
			if _, ok := wanted[event.StartDay()]; !ok {
				continue
			}
			snapshot, err := cloneEvent(event)
			if err != nil {
				return nil, err
			}
			result = append(result, snapshot)
		}
	}
	return result, nil
}

// Update replaces the stored snapshot, failing when the event is absent
func (s *EventStore) Update(ctx context.Context, event *entities.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := event.TeamID().String()
	eventID := event.ID().String()
	if _, ok := s.events[teamID][eventID]; !ok {
		return eventNotFoundError(teamID, eventID)
	}

	snapshot, err := cloneEvent(event)
	if err != nil {
		return err
	}
	s.events[teamID][eventID] = snapshot
	return nil
}

// Delete removes the event, failing when absent
func (s *EventStore) Delete(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[teamID.String()][eventID.String()]; !ok {
		return eventNotFoundError(teamID.String(), eventID.String())
	}
	delete(s.events[teamID.String()], eventID.String())
	return nil
}

func (s *EventStore) collect(teamID valueobjects.TeamID, match func(*entities.Event) bool) ([]*entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.Event
	for _, event := range s.events[teamID.String()] {
		if !match(event) {
			continue
		}
		snapshot, err := cloneEvent(event)
		if err != nil {
			return nil, err
		}
		result = append(result, snapshot)
	}
	return result, nil
}

func eventNotFoundError(teamID, eventID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"EVENT_NOT_FOUND",
		"The requested event does not exist",
	).WithDetail("teamId", teamID).WithDetail("eventId", eventID)
}

func cloneEvent(event *entities.Event) (*entities.Event, error) {
	return entities.ReconstructEvent(
		event.ID(),
		event.TeamID(),
		event.CreatedBy(),
		event.Details(),
		event.Category(),
		event.Color(),
		event.Span(),
		event.CreatedAt(),
		event.UpdatedAt(),
		event.Version(),
	)
}

var _ ports.EventStore = (*EventStore)(nil)
