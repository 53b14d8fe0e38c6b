package entities_test

import (
	"strings"
	"testing"

	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeam_Creation(t *testing.T) {
	ownerID := valueobjects.NewUserID()

	team, err := entities.NewTeam("Platform", "Infra and tooling", ownerID)

	require.NoError(t, err)
	assert.Equal(t, "Platform", team.Name())
	assert.True(t, team.OwnerID().Equals(ownerID))
	assert.NotEmpty(t, team.SubscriptionKey())
	assert.Equal(t, 1, team.Version())

	recorded := team.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "team.created", recorded[0].GetEventType())
}

func TestTeam_CreationValidation(t *testing.T) {
	ownerID := valueobjects.NewUserID()

	tests := []struct {
		name     string
		teamName string
		ownerID  valueobjects.UserID
	}{
		{name: "empty name", teamName: "", ownerID: ownerID},
		{name: "whitespace name", teamName: "   ", ownerID: ownerID},
		{name: "name too long", teamName: strings.Repeat("x", 101), ownerID: ownerID},
		{name: "zero owner", teamName: "Platform", ownerID: valueobjects.UserID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entities.NewTeam(tt.teamName, "", tt.ownerID)
			assert.Error(t, err)
		})
	}
}

func TestTeam_RotateSubscriptionKey(t *testing.T) {
	team, err := entities.NewTeam("Platform", "", valueobjects.NewUserID())
	require.NoError(t, err)
	team.MarkEventsAsCommitted()

	before := team.SubscriptionKey()
	rotator := valueobjects.NewUserID()

	err = team.RotateSubscriptionKey(rotator)

	require.NoError(t, err)
	assert.NotEqual(t, before, team.SubscriptionKey())
	assert.Equal(t, 2, team.Version())

	recorded := team.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "team.subscription_key_rotated", recorded[0].GetEventType())
}

func TestTeam_RenameNoChangeIsNoOp(t *testing.T) {
	team, err := entities.NewTeam("Platform", "", valueobjects.NewUserID())
	require.NoError(t, err)

	require.NoError(t, team.Rename("Platform"))
	assert.Equal(t, 1, team.Version())
}

func TestTeamMember_Creation(t *testing.T) {
	teamID := valueobjects.NewTeamID()
	userID := valueobjects.NewUserID()
	inviter := valueobjects.NewUserID()

	member, err := entities.NewTeamMember(teamID, userID, valueobjects.RoleMember, inviter)

	require.NoError(t, err)
	assert.True(t, member.TeamID().Equals(teamID))
	assert.True(t, member.UserID().Equals(userID))
	assert.True(t, member.Role().Equals(valueobjects.RoleMember))

	recorded := member.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "member.invited", recorded[0].GetEventType())
}

func TestTeamMember_CreationRequiresRole(t *testing.T) {
	_, err := entities.NewTeamMember(valueobjects.NewTeamID(), valueobjects.NewUserID(), valueobjects.Role{}, valueobjects.NewUserID())
	assert.Error(t, err)
}

func TestTeamMember_ChangeRole(t *testing.T) {
	member, err := entities.NewTeamMember(valueobjects.NewTeamID(), valueobjects.NewUserID(), valueobjects.RoleViewer, valueobjects.NewUserID())
	require.NoError(t, err)
	member.MarkEventsAsCommitted()

	err = member.ChangeRole(valueobjects.RoleOwner)

	require.NoError(t, err)
	assert.True(t, member.Role().Equals(valueobjects.RoleOwner))
	assert.Equal(t, 2, member.Version())

	recorded := member.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "member.role_changed", recorded[0].GetEventType())
}

func TestTeamMember_ChangeRoleSameIsNoOp(t *testing.T) {
	member, err := entities.NewTeamMember(valueobjects.NewTeamID(), valueobjects.NewUserID(), valueobjects.RoleViewer, valueobjects.NewUserID())
	require.NoError(t, err)
	member.MarkEventsAsCommitted()

	require.NoError(t, member.ChangeRole(valueobjects.RoleViewer))
	assert.Equal(t, 1, member.Version())
	assert.Empty(t, member.GetUncommittedEvents())
}

func TestTeamMember_HasRole(t *testing.T) {
	member, err := entities.NewTeamMember(valueobjects.NewTeamID(), valueobjects.NewUserID(), valueobjects.RoleMember, valueobjects.NewUserID())
	require.NoError(t, err)

	assert.True(t, member.HasRole(valueobjects.RoleViewer))
	assert.True(t, member.HasRole(valueobjects.RoleMember))
	assert.False(t, member.HasRole(valueobjects.RoleOwner))
}

func TestUser_Creation(t *testing.T) {
	email, err := valueobjects.NewEmail("Alice@Example.com")
	require.NoError(t, err)

	user, err := entities.NewUser(email, "Alice")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email().String())
	assert.Equal(t, "Alice", user.Name())

	recorded := user.GetUncommittedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, "user.created", recorded[0].GetEventType())
}

func TestUser_CreationValidation(t *testing.T) {
	email, _ := valueobjects.NewEmail("alice@example.com")

	_, err := entities.NewUser(valueobjects.Email{}, "Alice")
	assert.Error(t, err)

	_, err = entities.NewUser(email, "  ")
	assert.Error(t, err)

	_, err = entities.NewUser(email, strings.Repeat("a", 101))
	assert.Error(t, err)
}

func TestUser_Rename(t *testing.T) {
	email, _ := valueobjects.NewEmail("alice@example.com")
	user, err := entities.NewUser(email, "Alice")
	require.NoError(t, err)

	require.NoError(t, user.Rename("Alice Liddell"))
	assert.Equal(t, "Alice Liddell", user.Name())
	assert.Equal(t, 2, user.Version())
}
