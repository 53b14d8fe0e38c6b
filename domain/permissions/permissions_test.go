package permissions

import (
	"testing"

	"teamcal-backend/domain/core/valueobjects"
	pkgerrors "teamcal-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllows_Matrix(t *testing.T) {
	tests := []struct {
		name       string
		role       valueobjects.Role
		permission Permission
		expected   bool
	}{
		// create event
		{"owner creates event", valueobjects.RoleOwner, PermissionCreateEvent, true},
		{"member creates event", valueobjects.RoleMember, PermissionCreateEvent, true},
		{"viewer cannot create event", valueobjects.RoleViewer, PermissionCreateEvent, false},

		// edit/delete without ownership context
		{"owner edits any event", valueobjects.RoleOwner, PermissionEditEvent, true},
		{"member cannot edit unconditionally", valueobjects.RoleMember, PermissionEditEvent, false},
		{"viewer cannot edit", valueobjects.RoleViewer, PermissionEditEvent, false},
		{"owner deletes any event", valueobjects.RoleOwner, PermissionDeleteEvent, true},
		{"member cannot delete unconditionally", valueobjects.RoleMember, PermissionDeleteEvent, false},

		// invite member
		{"owner invites", valueobjects.RoleOwner, PermissionInviteMember, true},
		{"member invites", valueobjects.RoleMember, PermissionInviteMember, true},
		{"viewer cannot invite", valueobjects.RoleViewer, PermissionInviteMember, false},

		// remove/re-role member
		{"owner removes member", valueobjects.RoleOwner, PermissionRemoveMember, true},
		{"member cannot remove member", valueobjects.RoleMember, PermissionRemoveMember, false},
		{"viewer cannot remove member", valueobjects.RoleViewer, PermissionRemoveMember, false},
		{"owner changes roles", valueobjects.RoleOwner, PermissionChangeRole, true},
		{"member cannot change roles", valueobjects.RoleMember, PermissionChangeRole, false},

		// manage team settings
		{"owner manages team", valueobjects.RoleOwner, PermissionManageTeam, true},
		{"member cannot manage team", valueobjects.RoleMember, PermissionManageTeam, false},
		{"viewer cannot manage team", valueobjects.RoleViewer, PermissionManageTeam, false},

		// view
		{"owner views", valueobjects.RoleOwner, PermissionViewEvents, true},
		{"member views", valueobjects.RoleMember, PermissionViewEvents, true},
		{"viewer views", valueobjects.RoleViewer, PermissionViewEvents, true},
		{"viewer views team", valueobjects.RoleViewer, PermissionViewTeam, true},

		// degenerate inputs
		{"zero role denied everything", valueobjects.Role{}, PermissionViewEvents, false},
		{"unknown permission denied", valueobjects.RoleOwner, Permission("event.transmogrify"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allows(tt.role, tt.permission))
		})
	}
}

func TestAllowsEvent_OwnershipOverride(t *testing.T) {
	creator := valueobjects.NewUserID()
	other := valueobjects.NewUserID()

	tests := []struct {
		name       string
		role       valueobjects.Role
		permission Permission
		owner      valueobjects.UserID
		actor      valueobjects.UserID
		expected   bool
	}{
		{"member edits own event", valueobjects.RoleMember, PermissionEditEvent, creator, creator, true},
		{"member deletes own event", valueobjects.RoleMember, PermissionDeleteEvent, creator, creator, true},
		{"member cannot edit another's event", valueobjects.RoleMember, PermissionEditEvent, creator, other, false},
		{"member cannot delete another's event", valueobjects.RoleMember, PermissionDeleteEvent, creator, other, false},
		{"owner edits another's event", valueobjects.RoleOwner, PermissionEditEvent, creator, other, true},
		{"viewer cannot edit even own event", valueobjects.RoleViewer, PermissionEditEvent, creator, creator, false},
		{"override does not extend to member removal", valueobjects.RoleMember, PermissionRemoveMember, creator, creator, false},
		{"zero actor never matches owner", valueobjects.RoleMember, PermissionEditEvent, valueobjects.UserID{}, valueobjects.UserID{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AllowsEvent(tt.role, tt.permission, tt.owner, tt.actor))
		})
	}
}

func TestRequire_CarriesPermissionAndRole(t *testing.T) {
	err := Require(valueobjects.RoleViewer, PermissionCreateEvent)
	require.Error(t, err)

	var denied *pkgerrors.DomainError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "PERMISSION_DENIED", denied.Code)
	assert.Equal(t, 403, denied.StatusCode)
	assert.Equal(t, "event.create", denied.Details["required_permission"])
	assert.Equal(t, "viewer", denied.Details["actual_role"])
}

func TestRequire_AllowedReturnsNil(t *testing.T) {
	assert.NoError(t, Require(valueobjects.RoleOwner, PermissionManageTeam))
	assert.NoError(t, Require(valueobjects.RoleViewer, PermissionViewEvents))
}

func TestRequireEvent(t *testing.T) {
	creator := valueobjects.NewUserID()
	other := valueobjects.NewUserID()

	assert.NoError(t, RequireEvent(valueobjects.RoleMember, PermissionEditEvent, creator, creator))

	err := RequireEvent(valueobjects.RoleMember, PermissionDeleteEvent, creator, other)
	require.Error(t, err)

	var denied *pkgerrors.DomainError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "member", denied.Details["actual_role"])
}
