package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/domain/core/validators"
	pkgerrors "teamcal-backend/pkg/errors"
)

// matrixEnv builds a team with one user in each role
type matrixEnv struct {
	*testEnv
	teamID string
	owner  string
	member string
	viewer string
}

func newMatrixEnv(t *testing.T) *matrixEnv {
	t.Helper()

	env := newTestEnv(t)
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	viewer := env.registerUser(t, "viewer@example.com", "Ash Viewer")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")
	env.invite(t, teamID, owner.ID().String(), viewer.ID().String(), "viewer")

	return &matrixEnv{
		testEnv: env,
		teamID:  teamID,
		owner:   owner.ID().String(),
		member:  member.ID().String(),
		viewer:  viewer.ID().String(),
	}
}

func TestEventService_CreatePermissions(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	_, err := m.eventService.Create(ctx, m.teamID, m.owner, newCreateInput("Planning", at(9), at(10)))
	assert.NoError(t, err)

	_, err = m.eventService.Create(ctx, m.teamID, m.member, newCreateInput("Standup", at(10), at(11)))
	assert.NoError(t, err)

	_, err = m.eventService.Create(ctx, m.teamID, m.viewer, newCreateInput("Sneaky", at(11), at(12)))
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "viewer", denied.Details["actual_role"])
	assert.Equal(t, "event.create", denied.Details["required_permission"])
}

func TestEventService_CreateValidatesBeforeWriting(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	// End before start never reaches the store
	_, err := m.eventService.Create(ctx, m.teamID, m.member, newCreateInput("Backwards", at(12), at(9)))
	var validationErrors *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	input := newCreateInput("", at(9), at(10))
	input.Category = "brunch"
	_, err = m.eventService.Create(ctx, m.teamID, m.member, input)
	require.ErrorAs(t, err, &validationErrors)
	fields := validationErrors.ToMap()
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "category")

	events, storeErr := m.eventService.ListByTeam(ctx, m.teamID, m.member)
	require.NoError(t, storeErr)
	assert.Empty(t, events)
}

func TestEventService_MembersEditOwnEventsOnly(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	ownersEvent := m.createEvent(t, m.teamID, m.owner, "Roadmap", at(9), at(10))
	membersEvent := m.createEvent(t, m.teamID, m.member, "Standup", at(10), at(11))

	title := "Renamed"
	update := validators.EventUpdateInput{Title: &title}

	// A member may edit their own event
	updated, err := m.eventService.Update(ctx, m.teamID, membersEvent.ID().String(), m.member, update)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Details().Title())

	// But not someone else's
	_, err = m.eventService.Update(ctx, m.teamID, ownersEvent.ID().String(), m.member, update)
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "member", denied.Details["actual_role"])

	// Owners may edit anyone's
	_, err = m.eventService.Update(ctx, m.teamID, membersEvent.ID().String(), m.owner, update)
	assert.NoError(t, err)

	// Viewers may edit nothing, their own nonexistent included
	_, err = m.eventService.Update(ctx, m.teamID, membersEvent.ID().String(), m.viewer, update)
	requireDomainCode(t, err, "PERMISSION_DENIED")
}

func TestEventService_DeleteFollowsTheSameMatrix(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	ownersEvent := m.createEvent(t, m.teamID, m.owner, "Roadmap", at(9), at(10))
	membersEvent := m.createEvent(t, m.teamID, m.member, "Standup", at(10), at(11))

	err := m.eventService.Delete(ctx, m.teamID, ownersEvent.ID().String(), m.member)
	requireDomainCode(t, err, "PERMISSION_DENIED")

	require.NoError(t, m.eventService.Delete(ctx, m.teamID, membersEvent.ID().String(), m.member))
	require.NoError(t, m.eventService.Delete(ctx, m.teamID, ownersEvent.ID().String(), m.owner))

	events, err := m.eventService.ListByTeam(ctx, m.teamID, m.viewer)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventService_DeleteMissingEventIsNotFound(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()
	ghost := "0f5ad3c8-98a1-4d11-9f3c-333333333333"

	err := m.eventService.Delete(ctx, m.teamID, ghost, m.member)
	notFound := requireDomainCode(t, err, "EVENT_NOT_FOUND")
	assert.Equal(t, 404, notFound.StatusCode)

	// Non-members get a denial, not a not-found, for the same ghost
	outsider := m.registerUser(t, "outsider@example.com", "Sam Outsider")
	err = m.eventService.Delete(ctx, m.teamID, ghost, outsider.ID().String())
	requireDomainCode(t, err, "PERMISSION_DENIED")
}

func TestEventService_UpdateMergesPartialFields(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	input := newCreateInput("Planning", at(9), at(11))
	input.Description = "Quarterly planning"
	event, err := m.eventService.Create(ctx, m.teamID, m.member, input)
	require.NoError(t, err)

	// Moving only the start keeps the stored end
	newStart := at(10)
	updated, err := m.eventService.Update(ctx, m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{
		StartTime: &newStart,
	})
	require.NoError(t, err)
	assert.True(t, updated.Span().Start().Equal(at(10)))
	assert.True(t, updated.Span().End().Equal(at(11)))
	assert.Equal(t, "Quarterly planning", updated.Details().Description())

	// A start at or past the stored end is rejected on the merged span
	badStart := at(11)
	_, err = m.eventService.Update(ctx, m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{
		StartTime: &badStart,
	})
	requireDomainCode(t, err, "INVALID_TIME_RANGE")

	// Retitling alone leaves the schedule in place
	title := "Planning v2"
	updated, err = m.eventService.Update(ctx, m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Planning v2", updated.Details().Title())
	assert.True(t, updated.Span().Start().Equal(at(10)))
}

func TestEventService_UpdateRequiresAField(t *testing.T) {
	m := newMatrixEnv(t)
	event := m.createEvent(t, m.teamID, m.member, "Standup", at(9), at(10))

	_, err := m.eventService.Update(context.Background(), m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{})

	var validationErrors *pkgerrors.ValidationErrors
	assert.ErrorAs(t, err, &validationErrors)
}

func TestEventService_RescheduleMovesCalendarDay(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	event := m.createEvent(t, m.teamID, m.member, "Release",
		time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
	)
	require.Equal(t, "2025-01-20", event.StartDay())

	febStart := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	febEnd := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	updated, err := m.eventService.Update(ctx, m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{
		StartTime: &febStart,
		EndTime:   &febEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", updated.StartDay())
}

func TestEventService_ListingsAndLookups(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	input := newCreateInput("Planning", at(9), at(10))
	input.Category = "deadline"
	event, err := m.eventService.Create(ctx, m.teamID, m.member, input)
	require.NoError(t, err)
	m.createEvent(t, m.teamID, m.owner, "Social hour", at(17), at(18))

	// Any role may read, viewer included
	found, err := m.eventService.Get(ctx, m.teamID, event.ID().String(), m.viewer)
	require.NoError(t, err)
	assert.True(t, found.ID().Equals(event.ID()))

	deadlines, err := m.eventService.ListByCategory(ctx, m.teamID, m.viewer, "deadline")
	require.NoError(t, err)
	require.Len(t, deadlines, 1)

	_, err = m.eventService.ListByCategory(ctx, m.teamID, m.viewer, "brunch")
	requireDomainCode(t, err, "INVALID_CATEGORY")

	mine, err := m.eventService.ListByCreator(ctx, m.teamID, m.viewer, m.member)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = m.eventService.ListByCreator(ctx, m.teamID, m.viewer, "not-a-uuid")
	requireDomainCode(t, err, "MALFORMED_IDENTIFIER")
}

func TestEventService_LifecycleLandsInOutbox(t *testing.T) {
	m := newMatrixEnv(t)
	ctx := context.Background()

	event := m.createEvent(t, m.teamID, m.member, "Standup", at(9), at(10))
	title := "Renamed"
	_, err := m.eventService.Update(ctx, m.teamID, event.ID().String(), m.member, validators.EventUpdateInput{Title: &title})
	require.NoError(t, err)
	require.NoError(t, m.eventService.Delete(ctx, m.teamID, event.ID().String(), m.member))

	stored, err := m.outbox.GetEvents(ctx, event.ID().String())
	require.NoError(t, err)
	var types []string
	for _, e := range stored {
		types = append(types, e.GetEventType())
	}
	assert.Equal(t, []string{"event.created", "event.updated", "event.deleted"}, types)
}
