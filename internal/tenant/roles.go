// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenant

// Role is a per-tenant role assignment value.
type Role string

// Tenant roles, in ascending order of capability. A higher role subsumes
// the capabilities of the roles below it.
const (
	// RoleNone marks an assignment that exists but grants no tenant
	// access. Stored as a null role so a deactivated user keeps history
	// without keeping privileges.
	RoleNone Role = ""

	// RoleApplicationUser is the base member role.
	RoleApplicationUser Role = "applicationUser"

	// RoleApplicationManager can manage notice-board content.
	RoleApplicationManager Role = "applicationManager"

	// RoleTenantManager has full tenant administration, including user
	// provisioning.
	RoleTenantManager Role = "tenantManager"
)

// Valid reports whether r names a grantable role.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicationUser, RoleApplicationManager, RoleTenantManager:
		return true
	}
	return false
}

// Grants reports whether the assignment grants any tenant access.
func (r Role) Grants() bool {
	return r.Valid()
}

// IsTenantManager reports whether r is the tenant manager role.
func (r Role) IsTenantManager() bool {
	return r == RoleTenantManager
}

// IsApplicationManager reports whether r carries application-manager
// capabilities. Tenant managers subsume application managers.
func (r Role) IsApplicationManager() bool {
	return r == RoleApplicationManager || r == RoleTenantManager
}

// NormalizeRole forces the stored role to RoleNone for deactivated users,
// regardless of the requested role.
func NormalizeRole(requested Role, isActive bool) Role {
	if !isActive {
		return RoleNone
	}
	return requested
}
