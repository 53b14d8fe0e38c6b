package entities_test

import (
	"testing"
	"time"

	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEvent(t *testing.T) *entities.Event {
	t.Helper()

	details, err := valueobjects.NewEventDetails("Sprint planning", "Quarterly roadmap review")
	require.NoError(t, err)

	span, err := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	event, err := entities.NewEvent(
		valueobjects.NewTeamID(),
		valueobjects.NewUserID(),
		details,
		valueobjects.CategoryMeeting,
		span,
		valueobjects.Color{},
	)
	require.NoError(t, err)
	return event
}

func TestEvent_Creation(t *testing.T) {
	// Arrange
	teamID := valueobjects.NewTeamID()
	creatorID := valueobjects.NewUserID()
	details, err := valueobjects.NewEventDetails("Standup", "Daily sync")
	require.NoError(t, err)
	span, err := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 9, 15, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Act
	event, err := entities.NewEvent(teamID, creatorID, details, valueobjects.CategoryMeeting, span, valueobjects.Color{})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, event)
	assert.True(t, event.TeamID().Equals(teamID))
	assert.True(t, event.CreatedBy().Equals(creatorID))
	assert.Equal(t, 1, event.Version())
	assert.Equal(t, "2025-01-15", event.StartDay())

	recorded := event.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "event.created", recorded[0].GetEventType())
}

func TestEvent_CreationDefaultsCategory(t *testing.T) {
	details, err := valueobjects.NewEventDetails("Untagged", "")
	require.NoError(t, err)
	span, err := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	event, err := entities.NewEvent(valueobjects.NewTeamID(), valueobjects.NewUserID(), details, valueobjects.Category{}, span, valueobjects.Color{})

	require.NoError(t, err)
	assert.True(t, event.Category().Equals(valueobjects.CategoryOther))
}

func TestEvent_CreationRequiresTeamAndCreator(t *testing.T) {
	details, _ := valueobjects.NewEventDetails("Orphan", "")
	span, _ := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)

	_, err := entities.NewEvent(valueobjects.TeamID{}, valueobjects.NewUserID(), details, valueobjects.CategoryOther, span, valueobjects.Color{})
	assert.Error(t, err)

	_, err = entities.NewEvent(valueobjects.NewTeamID(), valueobjects.UserID{}, details, valueobjects.CategoryOther, span, valueobjects.Color{})
	assert.Error(t, err)
}

func TestEvent_RescheduleWithinSameDay(t *testing.T) {
	// Arrange
	event := createTestEvent(t)
	event.MarkEventsAsCommitted()

	newSpan, err := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Act
	err = event.Reschedule(newSpan, valueobjects.NewUserID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, event.Version())
	assert.Equal(t, "2025-01-15", event.StartDay())

	recorded := event.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	updated, ok := recorded[0].(events.EventUpdated)
	require.True(t, ok)
	assert.False(t, updated.StartDayMoved)
}

func TestEvent_RescheduleAcrossDayBoundary(t *testing.T) {
	// Arrange
	event := createTestEvent(t)
	event.MarkEventsAsCommitted()

	newSpan, err := valueobjects.NewTimeRange(
		time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Act
	err = event.Reschedule(newSpan, valueobjects.NewUserID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "2025-02-20", event.StartDay())

	recorded := event.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	updated, ok := recorded[0].(events.EventUpdated)
	require.True(t, ok)
	assert.True(t, updated.StartDayMoved)
	assert.Contains(t, updated.ChangedFields, "startTime")
}

func TestEvent_RescheduleNoChangeIsNoOp(t *testing.T) {
	event := createTestEvent(t)
	event.MarkEventsAsCommitted()

	err := event.Reschedule(event.Span(), valueobjects.NewUserID())

	require.NoError(t, err)
	assert.Equal(t, 1, event.Version())
	assert.Empty(t, event.GetUncommittedEvents())
}

func TestEvent_UpdateDetails(t *testing.T) {
	event := createTestEvent(t)
	event.MarkEventsAsCommitted()

	newDetails, err := valueobjects.NewEventDetails("Sprint planning (moved)", "Now with agenda")
	require.NoError(t, err)

	err = event.UpdateDetails(newDetails, valueobjects.NewUserID())

	require.NoError(t, err)
	assert.Equal(t, "Sprint planning (moved)", event.Details().Title())
	assert.Equal(t, 2, event.Version())
}

func TestEvent_ChangeColorNormalized(t *testing.T) {
	event := createTestEvent(t)
	event.MarkEventsAsCommitted()

	color, err := valueobjects.NewColor("#ab12cd")
	require.NoError(t, err)

	err = event.ChangeColor(color, valueobjects.NewUserID())

	require.NoError(t, err)
	assert.Equal(t, "#AB12CD", event.Color().String())
}

func TestEvent_IsOwnedBy(t *testing.T) {
	creator := valueobjects.NewUserID()
	details, _ := valueobjects.NewEventDetails("Owned", "")
	span, _ := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)

	event, err := entities.NewEvent(valueobjects.NewTeamID(), creator, details, valueobjects.CategoryOther, span, valueobjects.Color{})
	require.NoError(t, err)

	assert.True(t, event.IsOwnedBy(creator))
	assert.False(t, event.IsOwnedBy(valueobjects.NewUserID()))
}

func TestEvent_Reconstruct(t *testing.T) {
	id := valueobjects.NewEventID()
	teamID := valueobjects.NewTeamID()
	created := time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)
	details, _ := valueobjects.NewEventDetails("Restored", "From storage")
	span, _ := valueobjects.NewTimeRange(
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)

	event, err := entities.ReconstructEvent(id, teamID, valueobjects.NewUserID(), details, valueobjects.CategoryDeadline, valueobjects.Color{}, span, created, updated, 4)

	require.NoError(t, err)
	assert.Equal(t, created, event.CreatedAt())
	assert.Equal(t, updated, event.UpdatedAt())
	assert.Equal(t, 4, event.Version())
	assert.Empty(t, event.GetUncommittedEvents())
}
