package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/permissions"
	"teamcal-backend/infrastructure/persistence/memory"
)

func TestAuthorizer_ServesCachedMembershipUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	members := memory.NewMemberStore()
	authorizer := services.NewAuthorizer(members, memory.NewCache(), zap.NewNop())

	teamID := valueobjects.NewTeamID()
	userID := valueobjects.NewUserID()
	membership, err := entities.NewTeamMember(teamID, userID, valueobjects.RoleMember, userID)
	require.NoError(t, err)
	require.NoError(t, members.Create(ctx, membership))

	// First resolution hits the store and caches
	resolved, err := authorizer.Membership(ctx, teamID, userID)
	require.NoError(t, err)
	require.NotNil(t, resolved)

	// Deleting the row does not bite while the cache holds it
	require.NoError(t, members.Delete(ctx, teamID, userID))
	cached, err := authorizer.Membership(ctx, teamID, userID)
	require.NoError(t, err)
	assert.NotNil(t, cached)

	// Invalidation drops the entry and the store truth wins again
	authorizer.Invalidate(ctx, teamID, userID)
	gone, err := authorizer.Membership(ctx, teamID, userID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAuthorizer_AbsenceIsNeverCached(t *testing.T) {
	ctx := context.Background()
	members := memory.NewMemberStore()
	authorizer := services.NewAuthorizer(members, memory.NewCache(), zap.NewNop())

	teamID := valueobjects.NewTeamID()
	userID := valueobjects.NewUserID()

	// Resolve before the membership exists
	_, err := authorizer.Require(ctx, teamID, userID, permissions.PermissionViewTeam)
	requireDomainCode(t, err, "PERMISSION_DENIED")

	// An invite must take effect on the very next call
	membership, err := entities.NewTeamMember(teamID, userID, valueobjects.RoleViewer, userID)
	require.NoError(t, err)
	require.NoError(t, members.Create(ctx, membership))

	resolved, err := authorizer.Require(ctx, teamID, userID, permissions.PermissionViewTeam)
	require.NoError(t, err)
	assert.True(t, resolved.Role().Equals(valueobjects.RoleViewer))
}

func TestAuthorizer_WorksWithoutACache(t *testing.T) {
	ctx := context.Background()
	members := memory.NewMemberStore()
	authorizer := services.NewAuthorizer(members, nil, zap.NewNop())

	teamID := valueobjects.NewTeamID()
	userID := valueobjects.NewUserID()
	membership, err := entities.NewTeamMember(teamID, userID, valueobjects.RoleOwner, userID)
	require.NoError(t, err)
	require.NoError(t, members.Create(ctx, membership))

	resolved, err := authorizer.Require(ctx, teamID, userID, permissions.PermissionManageTeam)
	require.NoError(t, err)
	assert.True(t, resolved.Role().Equals(valueobjects.RoleOwner))

	authorizer.Invalidate(ctx, teamID, userID)
}
