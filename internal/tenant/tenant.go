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

// Package tenant is the authorization core: per-tenant role assignments,
// member profiles, and the operations that derive and propagate the
// current-tenant claim.
package tenant

import (
	"time"

	"github.com/anzenboard/anzenboard/internal/docstore"
)

// AuditFields are the audit attributes carried by every stored document.
type AuditFields struct {
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
}

// RoleAssignment grants a role to an identity within one tenant. A
// RoleNone assignment keeps membership history for a deactivated user
// without granting access.
type RoleAssignment struct {
	UID      string
	TenantID string
	Role     Role
	Audit    AuditFields
}

// UserProfile is a tenant member's profile, stored in the tenant's own
// namespace.
type UserProfile struct {
	UID      string
	TenantID string
	Email    string
	Name     string
	Location string
	IsActive bool
	Audit    AuditFields
}

// Document paths. The assignment lives under the user so that one read
// answers "what is this user's role in tenant X"; the profile lives under
// the tenant so that tenant listings stay tenant-scoped.
func RoleAssignmentPath(uid, tenantID string) string {
	return docstore.Join("tenantUsers", uid, "tenants", tenantID)
}

func UserProfilePath(tenantID, uid string) string {
	return docstore.Join("tenants", tenantID, "users", uid)
}

// UserProfilesPath is the collection holding all profiles of a tenant.
func UserProfilesPath(tenantID string) string {
	return docstore.Join("tenants", tenantID, "users")
}
