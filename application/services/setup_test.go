package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/validators"
	"teamcal-backend/infrastructure/persistence/memory"
	pkgerrors "teamcal-backend/pkg/errors"
)

// testEnv wires every service against the in-memory stores so a test
// can drive full flows without AWS
type testEnv struct {
	users   *memory.UserStore
	teams   *memory.TeamStore
	members *memory.MemberStore
	events  *memory.EventStore
	outbox  *memory.OutboxStore
	cache   *memory.Cache

	authorizer      *services.Authorizer
	userService     *services.UserService
	teamService     *services.TeamService
	eventService    *services.EventService
	calendarService *services.CalendarService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	env := &testEnv{
		users:   memory.NewUserStore(),
		teams:   memory.NewTeamStore(),
		members: memory.NewMemberStore(),
		events:  memory.NewEventStore(nil),
		outbox:  memory.NewOutboxStore(),
		cache:   memory.NewCache(),
	}
	env.authorizer = services.NewAuthorizer(env.members, env.cache, logger)
	env.userService = services.NewUserService(env.users, env.outbox, nil, logger)
	env.teamService = services.NewTeamService(env.teams, env.members, env.users, env.outbox, env.authorizer, nil, logger)
	env.eventService = services.NewEventService(env.events, env.outbox, env.authorizer, nil, logger)
	env.calendarService = services.NewCalendarService(env.events, env.members, env.authorizer, logger)
	return env
}

func (env *testEnv) registerUser(t *testing.T, email, name string) *entities.User {
	t.Helper()

	user, err := env.userService.Register(context.Background(), services.RegisterUserInput{
		Email: email,
		Name:  name,
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) createTeam(t *testing.T, ownerID, name string) *entities.Team {
	t.Helper()

	team, err := env.teamService.Create(context.Background(), ownerID, services.CreateTeamInput{
		Name: name,
	})
	require.NoError(t, err)
	return team
}

func (env *testEnv) invite(t *testing.T, teamID, actorID, targetID, role string) {
	t.Helper()

	_, err := env.teamService.InviteMember(context.Background(), teamID, actorID, services.InviteMemberInput{
		UserID: targetID,
		Role:   role,
	})
	require.NoError(t, err)
}

func (env *testEnv) createEvent(t *testing.T, teamID, actorID, title string, start, end time.Time) *entities.Event {
	t.Helper()

	event, err := env.eventService.Create(context.Background(), teamID, actorID, validators.EventCreateInput{
		Title:     title,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return event
}

func newCreateInput(title string, start, end time.Time) validators.EventCreateInput {
	return validators.EventCreateInput{Title: title, StartTime: start, EndTime: end}
}

// requireDomainCode asserts that err carries the given domain error code
func requireDomainCode(t *testing.T, err error, code string) *pkgerrors.DomainError {
	t.Helper()

	var domainErr *pkgerrors.DomainError
	require.ErrorAs(t, err, &domainErr, "expected a domain error, got %v", err)
	require.Equal(t, code, domainErr.Code, "unexpected domain error code: %v", err)
	return domainErr
}

func at(hour int) time.Time {
	return time.Date(2025, 6, 12, hour, 0, 0, 0, time.UTC)
}
