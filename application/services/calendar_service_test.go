package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/application/services"
)

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2025, month, d, hour, 0, 0, 0, time.UTC)
}

func TestCalendarService_MergesAcrossTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	me := env.registerUser(t, "me@example.com", "Mor Gan")
	other := env.registerUser(t, "other@example.com", "Ali Other")

	mine := env.createTeam(t, me.ID().String(), "Mine")
	shared := env.createTeam(t, other.ID().String(), "Shared")
	env.invite(t, shared.ID().String(), other.ID().String(), me.ID().String(), "viewer")
	private := env.createTeam(t, other.ID().String(), "Private")

	late := env.createEvent(t, mine.ID().String(), me.ID().String(), "Mine late", day(time.March, 12, 15), day(time.March, 12, 16))
	early := env.createEvent(t, shared.ID().String(), other.ID().String(), "Shared early", day(time.March, 10, 9), day(time.March, 10, 10))
	env.createEvent(t, private.ID().String(), other.ID().String(), "Not mine", day(time.March, 11, 9), day(time.March, 11, 10))

	window := services.CalendarQuery{Start: day(time.March, 1, 0), End: day(time.March, 31, 0)}
	events, err := env.calendarService.GetCalendar(ctx, me.ID().String(), window)
	require.NoError(t, err)

	// Only the actor's teams contribute, sorted by start time
	require.Len(t, events, 2)
	assert.True(t, events[0].ID().Equals(early.ID()))
	assert.True(t, events[1].ID().Equals(late.ID()))
}

func TestCalendarService_WindowBoundsAreInclusiveDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.registerUser(t, "me@example.com", "Mor Gan")
	team := env.createTeam(t, me.ID().String(), "Mine")

	inside := env.createEvent(t, team.ID().String(), me.ID().String(), "Inside", day(time.March, 10, 9), day(time.March, 10, 10))
	env.createEvent(t, team.ID().String(), me.ID().String(), "Before", day(time.March, 9, 23), day(time.March, 10, 1))
	env.createEvent(t, team.ID().String(), me.ID().String(), "After", day(time.March, 13, 9), day(time.March, 13, 10))

	events, err := env.calendarService.GetCalendar(ctx, me.ID().String(), services.CalendarQuery{
		Start: day(time.March, 10, 0),
		End:   day(time.March, 12, 0),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].ID().Equals(inside.ID()))
}

func TestCalendarService_TeamFilterRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	outsider := env.registerUser(t, "outsider@example.com", "Sam Outsider")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	env.createEvent(t, team.ID().String(), owner.ID().String(), "Kickoff", day(time.March, 10, 9), day(time.March, 10, 10))

	window := services.CalendarQuery{
		Start:  day(time.March, 1, 0),
		End:    day(time.March, 31, 0),
		TeamID: team.ID().String(),
	}

	events, err := env.calendarService.GetCalendar(ctx, owner.ID().String(), window)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = env.calendarService.GetCalendar(ctx, outsider.ID().String(), window)
	requireDomainCode(t, err, "PERMISSION_DENIED")
}

func TestCalendarService_NoMembershipsMeansEmptyCalendar(t *testing.T) {
	env := newTestEnv(t)
	loner := env.registerUser(t, "loner@example.com", "Lee Loner")

	events, err := env.calendarService.GetCalendar(context.Background(), loner.ID().String(), services.CalendarQuery{
		Start: day(time.March, 1, 0),
		End:   day(time.March, 31, 0),
	})

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCalendarService_RejectsIncompleteWindows(t *testing.T) {
	env := newTestEnv(t)
	me := env.registerUser(t, "me@example.com", "Mor Gan")

	_, err := env.calendarService.GetCalendar(context.Background(), me.ID().String(), services.CalendarQuery{
		Start: day(time.March, 1, 0),
	})
	requireDomainCode(t, err, "INVALID_TIME_RANGE")

	_, err = env.calendarService.GetCalendar(context.Background(), me.ID().String(), services.CalendarQuery{
		Start: day(time.June, 1, 0),
		End:   day(time.March, 1, 0),
	})
	requireDomainCode(t, err, "INVALID_TIME_RANGE")
}

func TestCalendarService_WideWindowsAreRefused(t *testing.T) {
	env := newTestEnv(t)
	me := env.registerUser(t, "me@example.com", "Mor Gan")
	env.createTeam(t, me.ID().String(), "Mine")

	_, err := env.calendarService.GetCalendar(context.Background(), me.ID().String(), services.CalendarQuery{
		Start: day(time.January, 1, 0),
		End:   day(time.December, 31, 0),
	})
	requireDomainCode(t, err, "RANGE_TOO_WIDE")
}
