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

import (
	"time"

	"github.com/anzenboard/anzenboard/internal/docstore"
)

// Audit field keys shared by every stored document.
const (
	FieldCreatedAt = "_createdAt"
	FieldCreatedBy = "_createdBy"
	FieldUpdatedAt = "_updatedAt"
	FieldUpdatedBy = "_updatedBy"
)

// ProfileFields maps a profile's payload to its stored shape. Audit fields
// are injected by the upsert helper, not here.
func ProfileFields(p UserProfile) docstore.Document {
	return docstore.Document{
		"email":    p.Email,
		"name":     p.Name,
		"location": p.Location,
		"isActive": p.IsActive,
	}
}

// ProfileUpdateFields maps the updatable part of a profile. Email is
// immutable through the update path and deliberately omitted.
func ProfileUpdateFields(p UserProfile) docstore.Document {
	return docstore.Document{
		"name":     p.Name,
		"location": p.Location,
		"isActive": p.IsActive,
	}
}

// AssignmentFields maps a role assignment to its stored shape. RoleNone is
// stored as an explicit null.
func AssignmentFields(role Role) docstore.Document {
	if role == RoleNone {
		return docstore.Document{"role": nil}
	}
	return docstore.Document{"role": string(role)}
}

// ProfileFromDocument reads a stored profile back into its typed form.
// The UID is derived from the document path leaf.
func ProfileFromDocument(tenantID, uid string, doc docstore.Document) UserProfile {
	return UserProfile{
		UID:      uid,
		TenantID: tenantID,
		Email:    asString(doc["email"]),
		Name:     asString(doc["name"]),
		Location: asString(doc["location"]),
		IsActive: asBool(doc["isActive"]),
		Audit:    auditFromDocument(doc),
	}
}

// AssignmentFromDocument reads a stored role assignment back into its
// typed form. A null or missing role becomes RoleNone.
func AssignmentFromDocument(uid, tenantID string, doc docstore.Document) RoleAssignment {
	return RoleAssignment{
		UID:      uid,
		TenantID: tenantID,
		Role:     Role(asString(doc["role"])),
		Audit:    auditFromDocument(doc),
	}
}

func auditFromDocument(doc docstore.Document) AuditFields {
	return AuditFields{
		CreatedAt: asTime(doc[FieldCreatedAt]),
		CreatedBy: asString(doc[FieldCreatedBy]),
		UpdatedAt: asTime(doc[FieldUpdatedAt]),
		UpdatedBy: asString(doc[FieldUpdatedBy]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asTime tolerates both native time values (memory store) and RFC3339
// strings (JSON-backed stores).
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	}
	return time.Time{}
}
