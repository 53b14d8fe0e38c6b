package permissions

import (
	"teamcal-backend/domain/core/valueobjects"
	pkgerrors "teamcal-backend/pkg/errors"
)

// Permission identifies a single guarded action within a team scope
type Permission string

const (
	// Event permissions
	PermissionCreateEvent Permission = "event.create"
	PermissionEditEvent   Permission = "event.edit"
	PermissionDeleteEvent Permission = "event.delete"
	PermissionViewEvents  Permission = "event.view"

	// Membership permissions
	PermissionInviteMember Permission = "member.invite"
	PermissionRemoveMember Permission = "member.remove"
	PermissionChangeRole   Permission = "member.change_role"

	// Team permissions
	PermissionViewTeam   Permission = "team.view"
	PermissionManageTeam Permission = "team.manage"
)

// minimumRole maps each permission to the lowest role that grants it
// unconditionally. Edit and delete on events additionally honor an
// ownership override checked by AllowsEvent.
var minimumRole = map[Permission]valueobjects.Role{
	PermissionCreateEvent:  valueobjects.RoleMember,
	PermissionEditEvent:    valueobjects.RoleOwner,
	PermissionDeleteEvent:  valueobjects.RoleOwner,
	PermissionViewEvents:   valueobjects.RoleViewer,
	PermissionInviteMember: valueobjects.RoleMember,
	PermissionRemoveMember: valueobjects.RoleOwner,
	PermissionChangeRole:   valueobjects.RoleOwner,
	PermissionViewTeam:     valueobjects.RoleViewer,
	PermissionManageTeam:   valueobjects.RoleOwner,
}

// ownedResourceOverride lists the permissions a member holds on events
// they created themselves
var ownedResourceOverride = map[Permission]bool{
	PermissionEditEvent:   true,
	PermissionDeleteEvent: true,
}

// Allows reports whether the role grants the permission with no resource
// context. Unknown permissions are always denied.
func Allows(role valueobjects.Role, permission Permission) bool {
	required, ok := minimumRole[permission]
	if !ok {
		return false
	}
	return role.HasRole(required)
}

// AllowsEvent reports whether the role grants the permission on a specific
// event, applying the ownership override: members may edit and delete
// events they created, regardless of the unconditional minimum role.
func AllowsEvent(role valueobjects.Role, permission Permission, resourceOwner, actor valueobjects.UserID) bool {
	if Allows(role, permission) {
		return true
	}
	if !ownedResourceOverride[permission] {
		return false
	}
	if !role.HasRole(valueobjects.RoleMember) {
		return false
	}
	return !actor.IsZero() && resourceOwner.Equals(actor)
}

// Require returns a permission error when the role does not grant the
// permission. This is the only error kind that crosses the authorization
// boundary; repositories never make authorization decisions.
func Require(role valueobjects.Role, permission Permission) error {
	if Allows(role, permission) {
		return nil
	}
	return pkgerrors.NewPermissionDenied(string(permission), role.String())
}

// RequireEvent returns a permission error when the role does not grant the
// permission on the given event, honoring the ownership override.
func RequireEvent(role valueobjects.Role, permission Permission, resourceOwner, actor valueobjects.UserID) error {
	if AllowsEvent(role, permission, resourceOwner, actor) {
		return nil
	}
	return pkgerrors.NewPermissionDenied(string(permission), role.String())
}
