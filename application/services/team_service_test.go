package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/valueobjects"
	pkgerrors "teamcal-backend/pkg/errors"
)

func TestTeamService_CreateAddsOwnerMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")

	team := env.createTeam(t, owner.ID().String(), "Platform")

	assert.True(t, team.OwnerID().Equals(owner.ID()))
	assert.NotEmpty(t, team.SubscriptionKey())

	members, err := env.teamService.ListMembers(ctx, team.ID().String(), owner.ID().String())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].UserID().Equals(owner.ID()))
	assert.True(t, members[0].Role().Equals(valueobjects.RoleOwner))

	pending, err := env.outbox.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(pending), 2)
}

func TestTeamService_NonMembersCannotProbeTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	outsider := env.registerUser(t, "outsider@example.com", "Sam Outsider")
	team := env.createTeam(t, owner.ID().String(), "Platform")

	// A real team and a made-up team must be indistinguishable to a
	// non-member: both deny, neither reports not-found
	_, err := env.teamService.Get(ctx, team.ID().String(), outsider.ID().String())
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "none", denied.Details["actual_role"])
	assert.Equal(t, 403, denied.StatusCode)

	_, err = env.teamService.Get(ctx, "0f5ad3c8-98a1-4d11-9f3c-111111111111", outsider.ID().String())
	requireDomainCode(t, err, "PERMISSION_DENIED")
}

func TestTeamService_UpdateIsOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	env.invite(t, team.ID().String(), owner.ID().String(), member.ID().String(), "member")

	name := "Platform Engineering"
	_, err := env.teamService.Update(ctx, team.ID().String(), member.ID().String(), services.UpdateTeamInput{Name: &name})
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "member", denied.Details["actual_role"])

	updated, err := env.teamService.Update(ctx, team.ID().String(), owner.ID().String(), services.UpdateTeamInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineering", updated.Name())
}

func TestTeamService_InvitePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	viewer := env.registerUser(t, "viewer@example.com", "Ash Viewer")
	guest := env.registerUser(t, "guest@example.com", "Jo Guest")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()

	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")
	env.invite(t, teamID, owner.ID().String(), viewer.ID().String(), "viewer")

	// Members may invite at or below their own role
	invited, err := env.teamService.InviteMember(ctx, teamID, member.ID().String(), services.InviteMemberInput{
		UserID: guest.ID().String(),
		Role:   "viewer",
	})
	require.NoError(t, err)
	assert.True(t, invited.Role().Equals(valueobjects.RoleViewer))

	// But never above it
	extra := env.registerUser(t, "extra@example.com", "Lee Extra")
	_, err = env.teamService.InviteMember(ctx, teamID, member.ID().String(), services.InviteMemberInput{
		UserID: extra.ID().String(),
		Role:   "owner",
	})
	escalation := requireDomainCode(t, err, "ROLE_ESCALATION")
	assert.Equal(t, "member", escalation.Details["actor_role"])

	// Viewers may not invite at all
	_, err = env.teamService.InviteMember(ctx, teamID, viewer.ID().String(), services.InviteMemberInput{
		UserID: extra.ID().String(),
		Role:   "viewer",
	})
	requireDomainCode(t, err, "PERMISSION_DENIED")
}

func TestTeamService_InviteRejectsUnknownsAndRepeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()

	_, err := env.teamService.InviteMember(ctx, teamID, owner.ID().String(), services.InviteMemberInput{
		UserID: "0f5ad3c8-98a1-4d11-9f3c-222222222222",
		Role:   "member",
	})
	requireDomainCode(t, err, "USER_NOT_FOUND")

	_, err = env.teamService.InviteMember(ctx, teamID, owner.ID().String(), services.InviteMemberInput{
		UserID: member.ID().String(),
		Role:   "banana",
	})
	requireDomainCode(t, err, "INVALID_ROLE")

	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")
	_, err = env.teamService.InviteMember(ctx, teamID, owner.ID().String(), services.InviteMemberInput{
		UserID: member.ID().String(),
		Role:   "viewer",
	})
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyMember)
}

func TestTeamService_LastOwnerCannotBeDemotedOrRemoved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	second := env.registerUser(t, "second@example.com", "Riley Second")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), second.ID().String(), "member")

	_, err := env.teamService.ChangeMemberRole(ctx, teamID, owner.ID().String(), owner.ID().String(), "member")
	lastOwner := requireDomainCode(t, err, "LAST_OWNER")
	assert.Equal(t, 422, lastOwner.StatusCode)

	err = env.teamService.RemoveMember(ctx, teamID, owner.ID().String(), owner.ID().String())
	requireDomainCode(t, err, "LAST_OWNER")

	// With a second owner in place the original owner may step down
	_, err = env.teamService.ChangeMemberRole(ctx, teamID, owner.ID().String(), second.ID().String(), "owner")
	require.NoError(t, err)
	_, err = env.teamService.ChangeMemberRole(ctx, teamID, owner.ID().String(), owner.ID().String(), "member")
	require.NoError(t, err)
}

func TestTeamService_RoleChangeTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")

	// Prime the authorizer cache with the member role
	env.createEvent(t, teamID, member.ID().String(), "Standup", at(9), at(10))

	_, err := env.teamService.ChangeMemberRole(ctx, teamID, owner.ID().String(), member.ID().String(), "viewer")
	require.NoError(t, err)

	// The demotion must bite on the next call, not after the cache TTL
	_, err = env.eventService.Create(ctx, teamID, member.ID().String(), newCreateInput("Retro", at(11), at(12)))
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "viewer", denied.Details["actual_role"])
}

func TestTeamService_RemoveMemberRevokesAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")

	// Members cannot remove anyone, not even themselves via this path
	err := env.teamService.RemoveMember(ctx, teamID, member.ID().String(), member.ID().String())
	requireDomainCode(t, err, "PERMISSION_DENIED")

	// Prime the cache, then remove
	_, err = env.teamService.Get(ctx, teamID, member.ID().String())
	require.NoError(t, err)
	require.NoError(t, env.teamService.RemoveMember(ctx, teamID, owner.ID().String(), member.ID().String()))

	_, err = env.teamService.Get(ctx, teamID, member.ID().String())
	denied := requireDomainCode(t, err, "PERMISSION_DENIED")
	assert.Equal(t, "none", denied.Details["actual_role"])

	err = env.teamService.RemoveMember(ctx, teamID, owner.ID().String(), member.ID().String())
	requireDomainCode(t, err, "MEMBER_NOT_FOUND")
}

func TestTeamService_DeleteLeavesScopedRowsBehind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")
	env.createEvent(t, teamID, owner.ID().String(), "Kickoff", at(9), at(10))

	require.NoError(t, env.teamService.Delete(ctx, teamID, owner.ID().String()))

	// The team row is gone but memberships and events are not cascaded
	gone, err := env.teams.FindByID(ctx, team.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)

	orphanMembers, err := env.members.FindByTeam(ctx, team.ID())
	require.NoError(t, err)
	assert.Len(t, orphanMembers, 2)

	orphanEvents, err := env.events.FindByTeam(ctx, team.ID())
	require.NoError(t, err)
	assert.Len(t, orphanEvents, 1)
}

func TestTeamService_ListTeamsForUserSkipsOrphanMemberships(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")

	kept := env.createTeam(t, owner.ID().String(), "Kept")
	doomed := env.createTeam(t, owner.ID().String(), "Doomed")
	require.NoError(t, env.teamService.Delete(ctx, doomed.ID().String(), owner.ID().String()))

	teams, err := env.teamService.ListTeamsForUser(ctx, owner.ID().String())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.True(t, teams[0].Team.ID().Equals(kept.ID()))
	assert.True(t, teams[0].Role.Equals(valueobjects.RoleOwner))
}

func TestTeamService_RotateSubscriptionKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "owner@example.com", "Dana Owner")
	member := env.registerUser(t, "member@example.com", "Riley Member")
	team := env.createTeam(t, owner.ID().String(), "Platform")
	teamID := team.ID().String()
	env.invite(t, teamID, owner.ID().String(), member.ID().String(), "member")
	oldKey := team.SubscriptionKey()

	_, err := env.teamService.RotateSubscriptionKey(ctx, teamID, member.ID().String())
	requireDomainCode(t, err, "PERMISSION_DENIED")

	rotated, err := env.teamService.RotateSubscriptionKey(ctx, teamID, owner.ID().String())
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, rotated.SubscriptionKey())
	assert.NotEmpty(t, rotated.SubscriptionKey())
}
