package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/infrastructure/persistence/memory"
	pkgerrors "teamcal-backend/pkg/errors"
)

func newMembership(t *testing.T, teamID valueobjects.TeamID, userID valueobjects.UserID, role valueobjects.Role) *entities.TeamMember {
	t.Helper()

	member, err := entities.NewTeamMember(teamID, userID, role, userID)
	require.NoError(t, err)
	return member
}

func TestMemberStore_CreateRejectsExistingMembership(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemberStore()
	teamID := valueobjects.NewTeamID()
	userID := valueobjects.NewUserID()

	require.NoError(t, store.Create(ctx, newMembership(t, teamID, userID, valueobjects.RoleMember)))
	err := store.Create(ctx, newMembership(t, teamID, userID, valueobjects.RoleViewer))

	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyMember)
}

func TestMemberStore_FindByUserSpansTeams(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemberStore()
	userID := valueobjects.NewUserID()
	teamA := valueobjects.NewTeamID()
	teamB := valueobjects.NewTeamID()

	require.NoError(t, store.Create(ctx, newMembership(t, teamA, userID, valueobjects.RoleOwner)))
	require.NoError(t, store.Create(ctx, newMembership(t, teamB, userID, valueobjects.RoleViewer)))
	require.NoError(t, store.Create(ctx, newMembership(t, teamA, valueobjects.NewUserID(), valueobjects.RoleMember)))

	memberships, err := store.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	for _, m := range memberships {
		assert.True(t, m.UserID().Equals(userID))
	}
}

func TestMemberStore_UpdateMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemberStore()
	member := newMembership(t, valueobjects.NewTeamID(), valueobjects.NewUserID(), valueobjects.RoleMember)

	err := store.Update(ctx, member)

	assert.ErrorIs(t, err, pkgerrors.ErrMemberNotFound)
}

func TestMemberStore_DeleteRemovesOnlyThatMembership(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemberStore()
	teamID := valueobjects.NewTeamID()
	stays := valueobjects.NewUserID()
	goes := valueobjects.NewUserID()

	require.NoError(t, store.Create(ctx, newMembership(t, teamID, stays, valueobjects.RoleOwner)))
	require.NoError(t, store.Create(ctx, newMembership(t, teamID, goes, valueobjects.RoleMember)))

	require.NoError(t, store.Delete(ctx, teamID, goes))

	remaining, err := store.FindByTeam(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].UserID().Equals(stays))

	err = store.Delete(ctx, teamID, goes)
	assert.ErrorIs(t, err, pkgerrors.ErrMemberNotFound)
}
