package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoleFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Role
		wantErr  bool
	}{
		{name: "owner", input: "owner", expected: RoleOwner},
		{name: "member", input: "member", expected: RoleMember},
		{name: "viewer", input: "viewer", expected: RoleViewer},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown value", input: "admin", wantErr: true},
		{name: "case sensitive", input: "Owner", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := NewRoleFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, role.IsZero())
			} else {
				require.NoError(t, err)
				assert.True(t, role.Equals(tt.expected))
			}
		})
	}
}

func TestRole_RankOrdering(t *testing.T) {
	assert.Greater(t, RoleOwner.Rank(), RoleMember.Rank())
	assert.Greater(t, RoleMember.Rank(), RoleViewer.Rank())
	assert.Greater(t, RoleViewer.Rank(), Role{}.Rank())
}

func TestRole_HasRole(t *testing.T) {
	tests := []struct {
		name     string
		actual   Role
		required Role
		expected bool
	}{
		{name: "owner satisfies owner", actual: RoleOwner, required: RoleOwner, expected: true},
		{name: "owner satisfies member", actual: RoleOwner, required: RoleMember, expected: true},
		{name: "owner satisfies viewer", actual: RoleOwner, required: RoleViewer, expected: true},
		{name: "member fails owner", actual: RoleMember, required: RoleOwner, expected: false},
		{name: "member satisfies member", actual: RoleMember, required: RoleMember, expected: true},
		{name: "member satisfies viewer", actual: RoleMember, required: RoleViewer, expected: true},
		{name: "viewer fails owner", actual: RoleViewer, required: RoleOwner, expected: false},
		{name: "viewer fails member", actual: RoleViewer, required: RoleMember, expected: false},
		{name: "viewer satisfies viewer", actual: RoleViewer, required: RoleViewer, expected: true},
		{name: "zero role fails viewer", actual: Role{}, required: RoleViewer, expected: false},
		{name: "owner fails zero requirement", actual: RoleOwner, required: Role{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actual.HasRole(tt.required))
		})
	}
}

func TestRole_JSONRoundTrip(t *testing.T) {
	data, err := RoleMember.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"member"`, string(data))

	var role Role
	require.NoError(t, role.UnmarshalJSON(data))
	assert.True(t, role.Equals(RoleMember))

	assert.Error(t, role.UnmarshalJSON([]byte(`"superuser"`)))
}
