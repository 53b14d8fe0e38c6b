package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/infrastructure/persistence/memory"
	pkgerrors "teamcal-backend/pkg/errors"
)

func newEvent(t *testing.T, teamID valueobjects.TeamID, createdBy valueobjects.UserID, start, end time.Time) *entities.Event {
	t.Helper()

	details, err := valueobjects.NewEventDetails("Sprint review", "Demo of the new calendar view")
	require.NoError(t, err)
	span, err := valueobjects.NewTimeRange(start, end)
	require.NoError(t, err)

	event, err := entities.NewEvent(teamID, createdBy, details, valueobjects.CategoryMeeting, span, valueobjects.Color{})
	require.NoError(t, err)
	return event
}

func TestEventStore_CreateTwiceReturnsConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	teamID := valueobjects.NewTeamID()
	event := newEvent(t, teamID, valueobjects.NewUserID(),
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)

	require.NoError(t, store.Create(ctx, event))
	err := store.Create(ctx, event)

	assert.ErrorIs(t, err, pkgerrors.ErrEventExists)
}

func TestEventStore_DeleteMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)

	err := store.Delete(ctx, valueobjects.NewTeamID(), valueobjects.NewEventID())

	assert.ErrorIs(t, err, pkgerrors.ErrEventNotFound)
}

func TestEventStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	teamID := valueobjects.NewTeamID()
	creator := valueobjects.NewUserID()
	event := newEvent(t, teamID, creator,
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, store.Create(ctx, event))

	// Mutating the caller's copy after the write must not leak into
	// what the store hands out later
	details, err := valueobjects.NewEventDetails("Changed outside the store", "")
	require.NoError(t, err)
	require.NoError(t, event.UpdateDetails(details, creator))

	found, err := store.FindByID(ctx, teamID, event.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Sprint review", found.Details().Title())

	// And mutating what the store handed out must not change the store
	require.NoError(t, found.UpdateDetails(details, creator))
	again, err := store.FindByID(ctx, teamID, event.ID())
	require.NoError(t, err)
	assert.Equal(t, "Sprint review", again.Details().Title())
}

func TestEventStore_SingleDayRangeMatchesTeamFilter(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	teamID := valueobjects.NewTeamID()
	creator := valueobjects.NewUserID()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	onDay := newEvent(t, teamID, creator, day.Add(9*time.Hour), day.Add(10*time.Hour))
	alsoOnDay := newEvent(t, teamID, creator, day.Add(14*time.Hour), day.Add(15*time.Hour))
	offDay := newEvent(t, teamID, creator, day.AddDate(0, 0, 3).Add(9*time.Hour), day.AddDate(0, 0, 3).Add(10*time.Hour))
	for _, e := range []*entities.Event{onDay, alsoOnDay, offDay} {
		require.NoError(t, store.Create(ctx, e))
	}

	ranged, err := store.FindByDateRange(ctx, ports.DateRangeQuery{Start: day, End: day, TeamID: teamID})
	require.NoError(t, err)

	all, err := store.FindByTeam(ctx, teamID)
	require.NoError(t, err)
	var filtered []string
	for _, e := range all {
		if e.StartDay() == "2025-03-10" {
			filtered = append(filtered, e.ID().String())
		}
	}

	var rangedIDs []string
	for _, e := range ranged {
		rangedIDs = append(rangedIDs, e.ID().String())
	}
	assert.ElementsMatch(t, filtered, rangedIDs)
	assert.Len(t, ranged, 2)
}

func TestEventStore_RescheduleAcrossMonthsMovesDateKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	teamID := valueobjects.NewTeamID()
	creator := valueobjects.NewUserID()
	event := newEvent(t, teamID, creator,
		time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, store.Create(ctx, event))

	febSpan, err := valueobjects.NewTimeRange(
		time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, event.Reschedule(febSpan, creator))
	require.NoError(t, store.Update(ctx, event))

	january, err := store.FindByDateRange(ctx, ports.DateRangeQuery{
		Start:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		TeamID: teamID,
	})
	require.NoError(t, err)
	assert.Empty(t, january)

	february, err := store.FindByDateRange(ctx, ports.DateRangeQuery{
		Start:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		TeamID: teamID,
	})
	require.NoError(t, err)
	require.Len(t, february, 1)
	assert.True(t, february[0].ID().Equals(event.ID()))
}

func TestEventStore_DateRangeRejectsWideWindows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)

	_, err := store.FindByDateRange(ctx, ports.DateRangeQuery{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})

	var domainErr *pkgerrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RANGE_TOO_WIDE", domainErr.Code)
}

func TestEventStore_DateRangeRejectsInvertedWindows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)

	_, err := store.FindByDateRange(ctx, ports.DateRangeQuery{
		Start: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	var domainErr *pkgerrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_TIME_RANGE", domainErr.Code)
}

func TestEventStore_DateRangeWithoutTeamFilterSpansTeams(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	creator := valueobjects.NewUserID()
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	teamA := valueobjects.NewTeamID()
	teamB := valueobjects.NewTeamID()
	require.NoError(t, store.Create(ctx, newEvent(t, teamA, creator, day.Add(9*time.Hour), day.Add(10*time.Hour))))
	require.NoError(t, store.Create(ctx, newEvent(t, teamB, creator, day.Add(11*time.Hour), day.Add(12*time.Hour))))

	events, err := store.FindByDateRange(ctx, ports.DateRangeQuery{Start: day, End: day})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	scoped, err := store.FindByDateRange(ctx, ports.DateRangeQuery{Start: day, End: day, TeamID: teamA})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.True(t, scoped[0].TeamID().Equals(teamA))
}

func TestEventStore_FindByCreatorAndCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore(nil)
	teamID := valueobjects.NewTeamID()
	alice := valueobjects.NewUserID()
	bob := valueobjects.NewUserID()
	start := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

	byAlice := newEvent(t, teamID, alice, start, start.Add(time.Hour))
	byBob := newEvent(t, teamID, bob, start.Add(2*time.Hour), start.Add(3*time.Hour))
	require.NoError(t, store.Create(ctx, byAlice))
	require.NoError(t, store.Create(ctx, byBob))

	mine, err := store.FindByCreator(ctx, teamID, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].CreatedBy().Equals(alice))

	meetings, err := store.FindByCategory(ctx, teamID, valueobjects.CategoryMeeting)
	require.NoError(t, err)
	assert.Len(t, meetings, 2)

	social, err := store.FindByCategory(ctx, teamID, valueobjects.CategorySocial)
	require.NoError(t, err)
	assert.Empty(t, social)
}
