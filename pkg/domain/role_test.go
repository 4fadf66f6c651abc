package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHierarchy(t *testing.T) {
	assert.False(t, RolePublicUser.IsStaff())
	assert.True(t, RoleAnalyst.IsStaff())
	assert.False(t, RoleAnalyst.IsAdmin())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.False(t, Role("root").AtLeast(RolePublicUser), "unknown roles never satisfy a requirement")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("analyst")
	require.NoError(t, err)
	assert.Equal(t, RoleAnalyst, r)

	_, err = ParseRole("Analyst")
	require.Error(t, err)
}
