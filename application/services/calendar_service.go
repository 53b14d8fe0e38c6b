package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/permissions"
	pkgerrors "teamcal-backend/pkg/errors"
)

// maxConcurrentTeamQueries bounds the fan-out when a calendar window
// spans every team the actor belongs to
const maxConcurrentTeamQueries = 4

// CalendarQuery describes a calendar window request. TeamID is optional;
// when empty the window covers every team the actor is a member of.
type CalendarQuery struct {
	Start  time.Time
	End    time.Time
	TeamID string
}

// CalendarService assembles date-windowed calendar views. Cross-team
// windows are built from one store query per membership rather than an
// unfiltered index scan, so no query ever touches a team the actor does
// not belong to.
type CalendarService struct {
	events  ports.EventStore
	members ports.MemberStore
	logger  *zap.Logger

	authorizer *Authorizer
}

// NewCalendarService creates a new calendar service. The window width
// cap is enforced by the event store, not here.
func NewCalendarService(
	eventStore ports.EventStore,
	members ports.MemberStore,
	authorizer *Authorizer,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		events:     eventStore,
		members:    members,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetCalendar returns the actor's events whose start day falls inside
// the window, sorted by start time
func (s *CalendarService) GetCalendar(ctx context.Context, actorID string, query CalendarQuery) ([]*entities.Event, error) {
	uid, err := valueobjects.NewUserIDFromString(actorID)
	if err != nil {
		return nil, malformedID("userId", err)
	}
	if query.Start.IsZero() || query.End.IsZero() {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"Calendar windows need both a start and an end date",
		)
	}
	if query.End.Before(query.Start) {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"Calendar window end precedes its start",
		)
	}

	var results []*entities.Event
	if query.TeamID != "" {
		results, err = s.teamWindow(ctx, uid, query)
	} else {
		results, err = s.allTeamsWindow(ctx, uid, query)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.Span().Start().Equal(b.Span().Start()) {
			return a.Span().Start().Before(b.Span().Start())
		}
		return a.ID().String() < b.ID().String()
	})
	return results, nil
}

func (s *CalendarService) teamWindow(ctx context.Context, uid valueobjects.UserID, query CalendarQuery) ([]*entities.Event, error) {
	tid, err := valueobjects.NewTeamIDFromString(query.TeamID)
	if err != nil {
		return nil, malformedID("teamId", err)
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewEvents); err != nil {
		return nil, err
	}
	return s.events.FindByDateRange(ctx, ports.DateRangeQuery{
		Start:  query.Start,
		End:    query.End,
		TeamID: tid,
	})
}

func (s *CalendarService) allTeamsWindow(ctx context.Context, uid valueobjects.UserID, query CalendarQuery) ([]*entities.Event, error) {
	memberships, err := s.members.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []*entities.Event{}, nil
	}

	var (
		mu      sync.Mutex
		results []*entities.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTeamQueries)

	for _, membership := range memberships {
		teamID := membership.TeamID()
		g.Go(func() error {
			events, err := s.events.FindByDateRange(gctx, ports.DateRangeQuery{
				Start:  query.Start,
				End:    query.End,
				TeamID: teamID,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, events...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Calendar fan-out failed",
			zap.Error(err),
			zap.String("user_id", uid.String()),
			zap.Int("team_count", len(memberships)),
		)
		return nil, err
	}
	return results, nil
}
