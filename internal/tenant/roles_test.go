package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Predicates(t *testing.T) {
	tests := []struct {
		role         Role
		grants       bool
		tenantMgr    bool
		appMgr       bool
	}{
		{RoleNone, false, false, false},
		{RoleApplicationUser, true, false, false},
		{RoleApplicationManager, true, false, true},
		{RoleTenantManager, true, true, true},
		{Role("garbage"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.grants, tt.role.Grants())
			assert.Equal(t, tt.tenantMgr, tt.role.IsTenantManager())
			assert.Equal(t, tt.appMgr, tt.role.IsApplicationManager())
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleTenantManager, NormalizeRole(RoleTenantManager, true))
	assert.Equal(t, RoleNone, NormalizeRole(RoleTenantManager, false))
	assert.Equal(t, RoleNone, NormalizeRole(RoleApplicationUser, false))
	assert.Equal(t, RoleNone, NormalizeRole(RoleNone, true))
}

func TestAssignmentFields_NullRole(t *testing.T) {
	doc := AssignmentFields(RoleNone)
	v, ok := doc["role"]
	assert.True(t, ok)
	assert.Nil(t, v)

	doc = AssignmentFields(RoleTenantManager)
	assert.Equal(t, "tenantManager", doc["role"])
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "tenantUsers/u1/tenants/t1", RoleAssignmentPath("u1", "t1"))
	assert.Equal(t, "tenants/t1/users/u1", UserProfilePath("t1", "u1"))
	assert.Equal(t, "tenants/t1/users", UserProfilesPath("t1"))
}
