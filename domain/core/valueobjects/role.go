package valueobjects

import (
	"errors"
	"fmt"
)

// Role is a value object representing a member's role within a team.
// Roles form a total order: owner > member > viewer. Authorization
// checks compare ranks, so any higher role satisfies a lower requirement.
type Role struct {
	value string
}

// Role values
var (
	RoleOwner  = Role{value: "owner"}
	RoleMember = Role{value: "member"}
	RoleViewer = Role{value: "viewer"}
)

// roleRanks maps each role to its position in the total order
var roleRanks = map[string]int{
	"owner":  3,
	"member": 2,
	"viewer": 1,
}

// NewRoleFromString creates a Role from its string form
func NewRoleFromString(raw string) (Role, error) {
	if raw == "" {
		return Role{}, errors.New("role cannot be empty")
	}
	if _, ok := roleRanks[raw]; !ok {
		return Role{}, fmt.Errorf("role must be one of owner, member, viewer, got %q", raw)
	}
	return Role{value: raw}, nil
}

// String returns the string representation of the Role
func (r Role) String() string {
	return r.value
}

// Rank returns the role's position in the total order; the zero Role ranks 0
func (r Role) Rank() int {
	return roleRanks[r.value]
}

// HasRole reports whether this role satisfies the required role,
// meaning its rank is greater than or equal to the requirement's rank.
// A zero Role never satisfies any requirement.
func (r Role) HasRole(required Role) bool {
	if r.IsZero() || required.IsZero() {
		return false
	}
	return r.Rank() >= required.Rank()
}

// Equals checks if two Roles are equal
func (r Role) Equals(other Role) bool {
	return r.value == other.value
}

// IsZero checks if the Role is the zero value
func (r Role) IsZero() bool {
	return r.value == ""
}

// MarshalJSON implements json.Marshaler
func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Role) UnmarshalJSON(data []byte) error {
	value, isNull, err := unquoteIDJSON(data, "Role")
	if err != nil || isNull {
		return err
	}
	role, err := NewRoleFromString(value)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
